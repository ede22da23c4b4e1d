// merge-coverage combines multiple go test coverage profiles into one,
// keeping a single mode line. Used by CI to merge per-package profiles
// before uploading.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

func main() {
	if len(os.Args) < 3 {
		fmt.Fprintf(os.Stderr, "Usage: %s file1.out file2.out [...]\n", os.Args[0])
		os.Exit(1)
	}

	mode, err := readModeLine(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	fmt.Println(mode)

	for _, filename := range os.Args[1:] {
		if err := printProfileBody(filename); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		}
	}
}

// readModeLine returns the first line of a coverage profile, which names
// the coverage mode (set, count, atomic).
func readModeLine(filename string) (string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return "", fmt.Errorf("error opening %s: %w", filename, err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	if !scanner.Scan() {
		return "", fmt.Errorf("error reading mode line from %s", filename)
	}
	return scanner.Text(), nil
}

// printProfileBody writes every non-mode line of a coverage profile to
// stdout.
func printProfileBody(filename string) error {
	file, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("error opening %s: %w", filename, err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "mode:") && line != "" {
			fmt.Println(line)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading %s: %w", filename, err)
	}
	return nil
}
