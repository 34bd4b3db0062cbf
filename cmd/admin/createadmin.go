package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
	"gorm.io/gorm"

	"robolab-portal/internal/model"
	"robolab-portal/internal/repository"
)

const minPasswordLen = 8

type createAdminOptions struct {
	Email    string
	Name     string
	Password string
}

func parseCreateAdmin(args []string) (*createAdminOptions, error) {
	fs := flag.NewFlagSet("createadmin", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	email := fs.String("email", "", "administrator email")
	name := fs.String("name", "", "display name")
	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}

	opts := &createAdminOptions{
		Email: strings.ToLower(strings.TrimSpace(*email)),
		Name:  strings.TrimSpace(*name),
	}
	if opts.Email == "" || opts.Name == "" {
		return nil, fmt.Errorf("%w: createadmin needs -email and -name", errUsage)
	}
	if _, err := mail.ParseAddress(opts.Email); err != nil {
		return nil, fmt.Errorf("invalid email %q", opts.Email)
	}
	return opts, nil
}

// readPassword prompts twice on a terminal; otherwise it reads one line,
// so the password can be piped in.
func readPassword(in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return readPasswordLine(in)
	}

	fmt.Fprint(out, "Password: ")
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	fmt.Fprint(out, "Confirm password: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	return string(first), checkPassword(string(first))
}

func readPasswordLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	password := strings.TrimRight(line, "\r\n")
	return password, checkPassword(password)
}

func checkPassword(p string) error {
	if len(p) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}
	return nil
}

// createAdmin creates the account with the admin role. An existing account
// with the same email gets the new password and the role instead.
func createAdmin(ctx context.Context, users repository.AdminUserRepository, opts *createAdminOptions, out io.Writer) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	existing, err := users.GetByEmail(ctx, opts.Email)
	switch {
	case err == nil:
		if err := users.UpdatePassword(ctx, existing.ID, string(hash)); err != nil {
			return err
		}
		if err := users.GrantRole(ctx, existing.ID, model.RoleAdmin); err != nil {
			return err
		}
		fmt.Fprintf(out, "updated administrator %s (%s)\n", existing.Email, existing.ID)
		return nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return err
	}

	u := &model.AdminUser{Email: opts.Email, Name: opts.Name, PasswordHash: string(hash)}
	if err := users.Create(ctx, u, model.RoleAdmin); err != nil {
		return err
	}
	fmt.Fprintf(out, "created administrator %s (%s)\n", u.Email, u.ID)
	return nil
}
