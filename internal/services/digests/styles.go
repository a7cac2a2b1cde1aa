package digests

import (
	"math/rand"
	"sync"
	"time"
)

// Style is an artist whose manner the digest artwork imitates
type Style struct {
	Artist     string `json:"artist"`
	Descriptor string `json:"descriptor"`
}

// Styles is the rotation used for digest artwork
var Styles = []Style{
	{"Wassily Kandinsky", "Bold geometric shapes, vibrant primary colours, hard-edged circles and diagonal lines, musical rhythm translated to pure abstract form, no representational imagery"},
	{"Vincent van Gogh", "Thick swirling impasto brushstrokes, electric yellows and cobalt blues, the scene pulsing with emotional intensity, turbulent sky, heavy visible texture in every mark"},
	{"Salvador Dali", "Hyper-realistic surrealist dreamscape, melting impossible objects, vast arid desert extending to infinity, photographic detail applied to absurd scenarios, deep chiaroscuro shadow"},
	{"Katsushika Hokusai", "Japanese ukiyo-e woodblock print, bold flat black outlines, stylised ocean waves, graphic pattern fills, indigo and cream colour blocks, negative space as deliberate design element"},
	{"Gustav Klimt", "Art Nouveau gold leaf, ornamental spiral patterns covering every surface, jewel-like mosaic tiles, Byzantine richness, figures dissolving into decorative abstraction, copper and burnished gold dominant"},
	{"Jackson Pollock", "Abstract expressionist action painting, dense layered drips and splashes of industrial enamel, chaotic web of poured lines, raw canvas visible beneath, violent kinetic energy frozen in paint"},
	{"Egon Schiele", "Viennese expressionism, raw angular contour lines, elongated distorted forms, sickly ochre and burnt sienna palette, scratchy gestural marks, claustrophobic psychological rawness"},
	{"J.M.W. Turner", "Romantic sublime, atmosphere dissolving all solid forms into luminous vapour, golden apocalyptic light consuming the horizon, loose watercolour washes, barely legible forms emerging from radiant mist"},
	{"Roy Lichtenstein", "Bold black comic-strip outlines, Ben-Day dot pattern fills, flat primary colours, dramatic close-up cropping, graphic mechanical reproduction aesthetic, ironic pop art sensibility"},
	{"Edvard Munch", "Nordic expressionism, anxiety encoded in writhing undulating landscape lines, sickly green and blood-red sky, hollow-eyed figures, the horizon itself trembling with existential dread"},
	{"Georges Seurat", "Pointillist technique, entire image built from thousands of tiny pure-colour dots, shimmering optical colour mixing, scientific colour theory applied methodically, rigid formal composition"},
	{"Hieronymus Bosch", "Flemish Renaissance grotesque, teeming with impossible hybrid creatures, fantastical architectural structures, dense narrative detail in every corner, jewel-toned accents on earthy ground, medieval symbolism"},
	{"Frida Kahlo", "Mexican folk art fused with surrealism, flat decorative style, dense tropical foliage, bold botanical colour, symbolic objects charged with intense personal meaning, naive directness"},
	{"Mark Rothko", "Colour field abstraction, two or three luminous soft-edged rectangles of pure colour floating on canvas, emotional resonance through scale and hue relationship alone, meditative silence"},
	{"Edward Hopper", "American realism, stark raking light cutting across architecture, profound urban loneliness, diner windows glowing at night, long afternoon shadows, psychological stillness"},
	{"Utagawa Hiroshige", "Japanese woodblock landscape, flat colour planes divided by bold outlines, snow falling in diagonal lines, travellers tiny against monumental nature, deep indigo and terracotta palette"},
	{"Paul Gauguin", "Post-impressionist palette, flat bold outlines, non-naturalistic saturated colour fills, figures simplified to monumental shapes, decorative pattern, tropical flora as charged backdrop"},
	{"Umberto Boccioni", "Italian Futurism, dynamic force lines radiating outward, multiple simultaneous states of motion layered, fractured planes of colour, industrial energy and speed made visible"},
	{"Alphonse Mucha", "Czech Art Nouveau, flowing curvilinear botanical borders, pearl and rose palette, mosaic-like halos, ornate floral frame surrounding the central image, decorative flat linework"},
	{"Kazimir Malevich", "Russian Suprematism, pure geometric forms floating on white ground, black and red squares and rectangles, absolute reduction to essential form, zero reference to the natural world"},
}

// StylePicker deals styles from a shuffled deck, reshuffling when the deck
// runs out, so consecutive digests rarely share an artist.
type StylePicker struct {
	mu     sync.Mutex
	styles []Style
	deck   []int
	rng    *rand.Rand
}

// NewStylePicker creates a picker over styles. A zero seed uses the clock.
func NewStylePicker(styles []Style, seed int64) *StylePicker {
	if len(styles) == 0 {
		styles = Styles
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &StylePicker{
		styles: styles,
		rng:    rand.New(rand.NewSource(seed)),
	}
}

// Next returns the next style whose artist is not exclude. With a single
// style configured the exclusion cannot be honoured and that style is
// returned.
func (p *StylePicker) Next(exclude string) Style {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.styles) == 1 {
		return p.styles[0]
	}

	for {
		if len(p.deck) == 0 {
			p.deck = p.rng.Perm(len(p.styles))
		}
		idx := p.deck[0]
		p.deck = p.deck[1:]
		if p.styles[idx].Artist != exclude {
			return p.styles[idx]
		}
	}
}
