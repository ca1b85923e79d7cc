package password

// Character class alphabets, in pool order.
const (
	Uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	Lowercase = "abcdefghijklmnopqrstuvwxyz"
	Digits    = "0123456789"
	Symbols   = "!@#$%^&*()_+~`|}{[]:;?><,./-="
)

// Options select the length and character classes of a generated password.
type Options struct {
	Length    int
	Uppercase bool
	Lowercase bool
	Numbers   bool
	Symbols   bool
}

// DefaultOptions returns 16 characters drawn from every class.
func DefaultOptions() Options {
	return Options{
		Length:    16,
		Uppercase: true,
		Lowercase: true,
		Numbers:   true,
		Symbols:   true,
	}
}

// Generator builds random passwords from a RandomSource.
type Generator struct {
	src RandomSource
}

// NewGenerator returns a Generator drawing from src. A nil src falls back to
// CryptoSource.
func NewGenerator(src RandomSource) *Generator {
	if src == nil {
		src = CryptoSource{}
	}
	return &Generator{src: src}
}

var defaultGenerator = NewGenerator(CryptoSource{})

// Generate returns a password built with crypto/rand.
func Generate(opts Options) string {
	return defaultGenerator.Generate(opts)
}

type class struct {
	enabled  bool
	alphabet string
	present  func(classes) bool
}

func (o Options) classes() []class {
	return []class{
		{o.Uppercase, Uppercase, func(c classes) bool { return c.upper }},
		{o.Lowercase, Lowercase, func(c classes) bool { return c.lower }},
		{o.Numbers, Digits, func(c classes) bool { return c.digit }},
		{o.Symbols, Symbols, func(c classes) bool { return c.other }},
	}
}

// Generate draws opts.Length characters from the union of the enabled
// alphabets, or from the lowercase alphabet when none is enabled. A length
// of zero or less yields "".
//
// For each enabled class in the order uppercase, lowercase, digits, symbols,
// a class missing from the result gets one random character written over a
// random position. Later passes may overwrite what an earlier pass placed,
// so only the symbols class is certain to be present.
func (g *Generator) Generate(opts Options) string {
	if opts.Length <= 0 {
		return ""
	}

	var pool string
	for _, cl := range opts.classes() {
		if cl.enabled {
			pool += cl.alphabet
		}
	}
	if pool == "" {
		pool = Lowercase
	}

	out := make([]byte, opts.Length)
	for i := range out {
		out[i] = pool[g.src.Intn(len(pool))]
	}

	for _, cl := range opts.classes() {
		if !cl.enabled || cl.present(classify(string(out))) {
			continue
		}
		ch := cl.alphabet[g.src.Intn(len(cl.alphabet))]
		out[g.src.Intn(len(out))] = ch
	}

	return string(out)
}
