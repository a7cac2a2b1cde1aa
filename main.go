/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/killallgit/podcast-analyzer/cmd"

// @title           Podcast Analyzer API
// @version         1.0.0
// @description     Podcast ingestion, AI episode analysis and multi-episode digests
// @contact.name    API Support
// @contact.url     https://github.com/killallgit/podcast-analyzer
// @license.name    MIT
// @license.url     https://opensource.org/licenses/MIT
// @host            localhost:8080
// @BasePath        /
// @schemes         http https
func main() {
	cmd.Execute()
}
