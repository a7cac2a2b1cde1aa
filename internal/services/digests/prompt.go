package digests

import (
	"strings"
)

// Image prompts follow one grammar:
//
//	Painting in the style of <Artist>. <Descriptor>. Scene: <scene>. No text, no words, no letters.
//
// BuildImagePrompt is the only producer and ParseImagePrompt the only
// consumer. Artist and scene are also stored in their own columns, so
// parsing is needed only for prompts written before those existed.
const (
	promptPrefix = "Painting in the style of "
	sceneMarker  = " Scene: "
	promptSuffix = ". No text, no words, no letters."
)

// BuildImagePrompt renders the artwork prompt for a style and scene
func BuildImagePrompt(style Style, scene string) string {
	var b strings.Builder
	b.WriteString(promptPrefix)
	b.WriteString(style.Artist)
	b.WriteString(". ")
	b.WriteString(strings.TrimRight(style.Descriptor, ". "))
	b.WriteString(".")
	b.WriteString(sceneMarker)
	b.WriteString(cleanScene(scene))
	b.WriteString(promptSuffix)
	return b.String()
}

// ParseImagePrompt recovers the artist and scene from a prompt built by
// BuildImagePrompt. Artists from Styles are matched by name, so names
// containing periods parse correctly.
func ParseImagePrompt(prompt string) (artist, scene string, ok bool) {
	rest, found := strings.CutPrefix(prompt, promptPrefix)
	if !found {
		return "", "", false
	}

	artist = ""
	for _, s := range Styles {
		if strings.HasPrefix(rest, s.Artist+". ") {
			artist = s.Artist
			break
		}
	}
	if artist == "" {
		i := strings.Index(rest, ". ")
		if i <= 0 {
			return "", "", false
		}
		artist = rest[:i]
	}

	i := strings.LastIndex(rest, sceneMarker)
	if i < 0 {
		return "", "", false
	}
	scene = strings.TrimSuffix(rest[i+len(sceneMarker):], promptSuffix)
	scene = strings.TrimSuffix(scene, ".")
	return artist, strings.TrimSpace(scene), true
}

// cleanScene keeps the scene on one line and drops trailing punctuation
// that would double up against the grammar's separators.
func cleanScene(scene string) string {
	scene = strings.Join(strings.Fields(scene), " ")
	scene = strings.TrimRight(scene, ". ")
	scene = strings.ReplaceAll(scene, sceneMarker, " ")
	return scene
}

// sceneFromThemes derives a scene when the synthesizer did not supply one
func sceneFromThemes(themes []string) string {
	picked := make([]string, 0, 3)
	for _, t := range themes {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		picked = append(picked, strings.ToLower(t))
		if len(picked) == 3 {
			break
		}
	}
	if len(picked) == 0 {
		return "A lighthouse on a rocky coast at dusk, its beam sweeping across a restless sea"
	}
	return "A sweeping landscape at dawn where " + strings.Join(picked, ", ") + " take shape as rivers, towers and distant hills"
}
