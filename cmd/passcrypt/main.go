// Command passcrypt encrypts or decrypts a single value with a passphrase read
// from the terminal. Its output is interchangeable with the values the API
// stores.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/dimitrije/passkeeper/internal/secret"
	"github.com/howeyc/gopass"
)

func usage() {
	fmt.Fprint(os.Stderr, "Passcrypt encrypts and decrypts values with a passphrase.\n\n")
	fmt.Fprint(os.Stderr, "Usage:\n\n\tpasscrypt [FLAGS] [COMMAND] [VALUE]\n\n")
	fmt.Fprint(os.Stderr, `The commands are:

encrypt  encrypt VALUE and print the encoded record.
decrypt  decrypt the record VALUE and print the plaintext.

VALUE is read from the first line of standard input when omitted.

The flags are:`)
	fmt.Fprint(os.Stderr, "\n\n")
	flag.PrintDefaults()
	os.Exit(1)
}

var mode = flag.String("mode", secret.ModeSealed, "format used by encrypt: sealed or openssl")

// run applies command to value. cipherMode picks the encryption format;
// decryption accepts records of either format whatever the mode.
func run(command, cipherMode, value, passphrase string) (string, error) {
	c, err := secret.New(cipherMode, secret.DefaultKDFParams)
	if err != nil {
		return "", err
	}

	switch command {
	case "encrypt":
		return c.Encrypt(value, passphrase)
	case "decrypt":
		return secret.NewSealed(secret.DefaultKDFParams).Decrypt(value, passphrase)
	default:
		return "", fmt.Errorf("unknown command %q", command)
	}
}

func readValue(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 || flag.NArg() > 2 {
		usage()
	}

	command := flag.Arg(0)
	value := flag.Arg(1)
	if flag.NArg() == 1 {
		v, err := readValue(os.Stdin)
		if err != nil {
			log.Fatal("[error] cannot read value: ", err)
		}
		value = v
	}

	fmt.Fprint(os.Stderr, "Passphrase: ")
	passphrase, err := gopass.GetPasswd()
	if err != nil {
		log.Fatal("[error] cannot read passphrase")
	}

	out, err := run(command, *mode, value, string(passphrase))
	if err != nil {
		log.Fatal("[error] ", err)
	}
	fmt.Println(out)
}
