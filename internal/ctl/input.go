package ctl

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"

	"github.com/dmitrijs2005/sobrerodas/internal/common"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// getPassword prints prompt to w and reads a password from the terminal
// without echo.
func getPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// getNewPassword asks for a password twice and fails when the entries differ.
// The caller should wipe the result.
func getNewPassword(w io.Writer) ([]byte, error) {
	first, err := getPassword(w, "New password: ")
	if err != nil {
		return nil, err
	}
	second, err := getPassword(w, "Repeat password: ")
	if err != nil {
		wipe(first)
		return nil, err
	}
	defer wipe(second)

	if !bytes.Equal(first, second) {
		wipe(first)
		return nil, common.ErrPasswordMismatch
	}
	return first, nil
}

func wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
