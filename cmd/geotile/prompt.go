package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// errOutputExists is returned when the output file exists, --force is not
// set and stdin is not a terminal.
var errOutputExists = errors.New("output file already exists (use --force to overwrite)")

// confirmOutput returns the file to write. When path exists and force is
// false the user is asked whether to overwrite it or pick another name.
func (a *app) confirmOutput(path string, force bool) (string, error) {
	if force {
		return path, nil
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return path, nil
		}
		return "", err
	}
	if !a.isTTY() {
		return "", fmt.Errorf("%w: %s", errOutputExists, path)
	}

	r := bufio.NewReader(a.in)
	for {
		a.printf("The file '%s' already exists. Do you want to overwrite it? (y/n): ", path)
		answer, err := readLine(r)
		if err != nil {
			return "", err
		}
		switch strings.ToLower(answer) {
		case "y":
			return path, nil
		case "n":
			a.printf("Please enter a new file name: ")
			name, err := readLine(r)
			if err != nil {
				return "", err
			}
			if name == "" {
				return "", errors.New("no file name given")
			}
			if !strings.HasSuffix(name, ".geojson") {
				name += ".geojson"
			}
			return name, nil
		default:
			a.printf("Invalid input. Please enter 'y' or 'n'.\n")
		}
	}
}

func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil && line == "" {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
