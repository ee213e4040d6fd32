// Command admintool prepares the environment of the admin login:
//
//	admintool hash                 prompt for a password, print ADMIN_PWD_HASH_B64
//	admintool totp [-account a]    new ADMIN_TOTP_SECRET and its otpauth:// URL
//	admintool code <secret>        current TOTP code for a secret
//	admintool check                verify a password against the current environment
//	admintool open [file]          decrypt a mirrored audit event (AUDIT_ENCRYPTION_KEY)
package main

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/cvgenius/internal/server/admin"
	"github.com/dmitrijs2005/cvgenius/internal/server/audit"
	"github.com/dmitrijs2005/cvgenius/internal/server/auth"
	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

const issuer = "CVGenius Admin"

const envAuditKey = "AUDIT_ENCRYPTION_KEY"

var errUsage = errors.New("usage: admintool hash | totp [-account name] | code <secret> | check | open [file]")

// stdin is read by open when no file is given.
var stdin io.Reader = os.Stdin

// readPassword is a test seam for term.ReadPassword.
var readPassword = func() ([]byte, error) {
	return term.ReadPassword(int(os.Stdin.Fd()))
}

func main() {
	if err := run(os.Args[1:], os.Stdout, time.Now); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, w io.Writer, now func() time.Time) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "hash":
		fmt.Fprint(w, "Enter password: ")
		pw, err := readPassword()
		fmt.Fprintln(w)
		if err != nil {
			return err
		}
		out, err := hashPassword(pw, bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s=%s\n", admin.EnvPwdHashB64, out)

	case "totp":
		fs := flag.NewFlagSet("totp", flag.ContinueOnError)
		fs.SetOutput(w)
		account := fs.String("account", "admin", "account name shown in the authenticator app")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		secret, url, err := generateTOTP(*account)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s=%s\n%s\n", admin.EnvTOTPSecret, secret, url)

	case "code":
		if len(args) < 2 {
			return errUsage
		}
		code, err := totp.GenerateCodeCustom(args[1], now(), auth.TOTPGenerateOpts())
		if err != nil {
			return fmt.Errorf("generate code: %w", err)
		}
		fmt.Fprintln(w, code)

	case "check":
		creds, err := admin.NewEnvStore().Credentials()
		if err != nil {
			return fmt.Errorf("environment: %w", err)
		}
		fmt.Fprint(w, "Enter password: ")
		pw, err := readPassword()
		fmt.Fprintln(w)
		if err != nil {
			return err
		}
		if err := bcrypt.CompareHashAndPassword(creds.PasswordHash, pw); err != nil {
			return errors.New("password does not match ADMIN_PWD_HASH_B64")
		}
		fmt.Fprintf(w, "password OK for %s (2FA enabled: %t)\n", creds.Username, creds.TwoFactorEnabled())

	case "open":
		key := os.Getenv(envAuditKey)
		if key == "" {
			return fmt.Errorf("%s is not set", envAuditKey)
		}
		var (
			data []byte
			err  error
		)
		if len(args) > 1 {
			data, err = os.ReadFile(args[1])
		} else {
			data, err = io.ReadAll(stdin)
		}
		if err != nil {
			return fmt.Errorf("read event: %w", err)
		}
		e, err := audit.OpenEvent(data, key)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(e)

	default:
		return errUsage
	}
	return nil
}

// hashPassword returns the base64 of the bcrypt hash of pw.
func hashPassword(pw []byte, cost int) (string, error) {
	if len(pw) == 0 {
		return "", errors.New("empty password")
	}
	hash, err := bcrypt.GenerateFromPassword(pw, cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return base64.StdEncoding.EncodeToString(hash), nil
}

func generateTOTP(account string) (secret, url string, err error) {
	opts := auth.TOTPOpts()
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: account,
		Period:      opts.Period,
		Digits:      opts.Digits,
		Algorithm:   opts.Algorithm,
	})
	if err != nil {
		return "", "", fmt.Errorf("generate totp: %w", err)
	}
	return key.Secret(), key.URL(), nil
}
