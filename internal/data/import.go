package data

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/Roma7-7-7/readyword/internal/game"
)

type (
	// Line is one word bank entry in the form word:hint[:topic[:difficulty]].
	Line struct {
		Word       string
		Hint       string
		Topic      string
		Difficulty game.Difficulty
	}

	ParsingError struct {
		InvalidLines []int
	}
)

func (e *ParsingError) Error() string {
	return fmt.Sprintf("parsing error: invalidLines=%v", e.InvalidLines)
}

func Parse(ctx context.Context, in io.ReadCloser, out chan<- Line) error {
	defer close(out)
	defer in.Close()

	scanner := bufio.NewScanner(in)
	invalidLines := make([]int, 0, 10) //nolint:mnd // 10 is the expected capacity
	linNum := 0
	for scanner.Scan() {
		linNum++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" || strings.HasPrefix(raw, "#") {
			continue
		}

		line, ok := parseLine(raw)
		if !ok {
			invalidLines = append(invalidLines, linNum)
			continue
		}

		select {
		case <-ctx.Done():
			return nil
		case out <- line: // continue
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scan file: %w", err)
	}
	if len(invalidLines) > 0 {
		return &ParsingError{InvalidLines: invalidLines}
	}

	return nil
}

func parseLine(raw string) (Line, bool) {
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 4 {
		return Line{}, false
	}

	res := Line{
		Word: strings.ToLower(strings.TrimSpace(parts[0])),
		Hint: strings.TrimSpace(parts[1]),
	}
	if res.Word == "" || res.Hint == "" || !strings.ContainsFunc(res.Word, game.IsLetter) {
		return Line{}, false
	}

	if len(parts) > 2 { //nolint:mnd // topic is the third field
		res.Topic = strings.TrimSpace(parts[2])
	}
	if len(parts) > 3 { //nolint:mnd // difficulty is the fourth field
		d := strings.TrimSpace(parts[3])
		if d != "" {
			parsed, err := game.ParseDifficulty(d)
			if err != nil {
				return Line{}, false
			}
			res.Difficulty = parsed
		}
	}
	return res, true
}
