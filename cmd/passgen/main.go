// Command passgen prints random passwords with their strength, or scores a
// password typed at the terminal.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/dimitrije/passkeeper/internal/password"
	"github.com/howeyc/gopass"
)

type options struct {
	gen   password.Options
	seed  uint64
	count int
	score bool
	quiet bool
}

func parseFlags(args []string, errOut io.Writer) (*options, error) {
	def := password.DefaultOptions()
	o := &options{}

	fs := flag.NewFlagSet("passgen", flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.IntVar(&o.gen.Length, "length", def.Length, "password length")
	fs.BoolVar(&o.gen.Uppercase, "upper", def.Uppercase, "include uppercase letters")
	fs.BoolVar(&o.gen.Lowercase, "lower", def.Lowercase, "include lowercase letters")
	fs.BoolVar(&o.gen.Numbers, "numbers", def.Numbers, "include digits")
	fs.BoolVar(&o.gen.Symbols, "symbols", def.Symbols, "include symbols")
	fs.Uint64Var(&o.seed, "seed", 0, "seed for reproducible output (0 uses crypto/rand)")
	fs.IntVar(&o.count, "n", 1, "number of passwords to print")
	fs.BoolVar(&o.score, "score", false, "read a password from the terminal and print its strength")
	fs.BoolVar(&o.quiet, "q", false, "print passwords only")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.count < 1 {
		return nil, fmt.Errorf("-n must be at least 1, got %d", o.count)
	}
	return o, nil
}

func generate(o *options, out io.Writer) error {
	var src password.RandomSource = password.CryptoSource{}
	if o.seed != 0 {
		src = password.NewSeededSource(o.seed)
	}
	gen := password.NewGenerator(src)

	for range o.count {
		pw := gen.Generate(o.gen)
		if o.quiet {
			if _, err := fmt.Fprintln(out, pw); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(out, "%s\t%s\n", pw, describe(password.Evaluate(pw))); err != nil {
			return err
		}
	}
	return nil
}

func describe(s password.Strength) string {
	return fmt.Sprintf("%s (%d/100)", s.Label, s.Score)
}

func main() {
	o, err := parseFlags(os.Args[1:], os.Stderr)
	if err != nil {
		if err == flag.ErrHelp {
			os.Exit(0)
		}
		fmt.Fprintln(os.Stderr, "[error]", err)
		os.Exit(2)
	}

	if o.score {
		fmt.Print("Password: ")
		pw, err := gopass.GetPasswdMasked()
		if err != nil {
			fmt.Fprintln(os.Stderr, "[error] cannot read password:", err)
			os.Exit(1)
		}
		fmt.Println(describe(password.Evaluate(string(pw))))
		return
	}

	if err := generate(o, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "[error]", err)
		os.Exit(1)
	}
}
