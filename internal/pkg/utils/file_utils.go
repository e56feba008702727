package utils

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// DataLine is a meaningful line of a data file together with its 1-based position.
type DataLine struct {
	Number int
	Text   string
}

// ReadDataLines reads a text file skipping blank lines and '#' comments.
func ReadDataLines(filePath string) ([]DataLine, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file %s: %w", filePath, err)
	}
	defer file.Close()

	var lines []DataLine
	scanner := bufio.NewScanner(file)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, DataLine{Number: lineNum, Text: line})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error scanning data file %s: %w", filePath, err)
	}
	return lines, nil
}
