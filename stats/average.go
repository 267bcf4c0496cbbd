package stats

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode/utf8"

	"discord-archive/database"
	"discord-archive/models"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// histogram counts token occurrences at one position.
type histogram map[string]int64

// ranked returns the tokens ordered by count desc, then token asc.
func (h histogram) ranked() []models.PositionWinner {
	out := make([]models.PositionWinner, 0, len(h))
	for v, n := range h {
		out = append(out, models.PositionWinner{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}

// Average builds the positional model of the corpus under f: the most frequent character at
// each position up to the mean content length, and the most frequent word at each word position.
func (e *Engine) Average(ctx context.Context, f database.MessageFilter) (*models.AverageMessage, error) {
	count, mean, err := e.store.ContentLength(ctx, f)
	if err != nil {
		return nil, err
	}
	length := int(math.RoundToEven(mean))
	out := &models.AverageMessage{
		MessageCount:  count,
		AverageLength: length,
		CharPositions: []models.PositionWinner{},
		WordPositions: []models.PositionWinner{},
	}
	if count == 0 {
		return out, nil
	}

	lower := cases.Lower(language.Und)
	chars := make([]histogram, length)
	reach := make([]int64, length)
	words := make([]histogram, e.cfg.WordPositions)

	err = e.store.EachContent(ctx, f, func(content string) error {
		pos := 0
		for _, r := range content {
			if pos >= length {
				break
			}
			if chars[pos] == nil {
				chars[pos] = histogram{}
			}
			chars[pos][lowerRune(lower, r)]++
			reach[pos]++
			pos++
		}

		for i, w := range strings.Fields(lower.String(content)) {
			if i >= len(words) {
				break
			}
			w = trimTrailingPunct(w)
			if w == "" {
				continue
			}
			if words[i] == nil {
				words[i] = histogram{}
			}
			words[i][w]++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	for p, h := range chars {
		winner, ok := e.charWinner(h, reach[p])
		if !ok {
			continue
		}
		winner.Position = p + 1
		sb.WriteString(winner.Value)
		out.CharPositions = append(out.CharPositions, winner)
	}
	out.AverageMessageChars = sb.String()

	var picked []string
	for p, h := range words {
		ranked := h.ranked()
		if len(ranked) == 0 {
			continue
		}
		winner := ranked[0]
		winner.Position = p + 1
		picked = append(picked, winner.Value)
		out.WordPositions = append(out.WordPositions, winner)
	}
	out.AverageMessageWords = strings.Join(picked, " ")
	return out, nil
}

// charWinner picks the top character, replacing a space whose share of the messages reaching
// this position is under the threshold with the best non-space character.
func (e *Engine) charWinner(h histogram, reach int64) (models.PositionWinner, bool) {
	ranked := h.ranked()
	if len(ranked) == 0 {
		return models.PositionWinner{}, false
	}
	top := ranked[0]
	if top.Value != " " || float64(top.Count)*100/float64(reach) >= e.cfg.SpaceThreshold {
		return top, true
	}
	for _, c := range ranked[1:] {
		if c.Value != " " {
			return c, true
		}
	}
	return models.PositionWinner{}, false
}

func lowerRune(c cases.Caser, r rune) string {
	if r < utf8.RuneSelf {
		if 'A' <= r && r <= 'Z' {
			r += 'a' - 'A'
		}
		return string(r)
	}
	return c.String(string(r))
}

// trimTrailingPunct strips one trailing comma or period.
func trimTrailingPunct(w string) string {
	if strings.HasSuffix(w, ",") || strings.HasSuffix(w, ".") {
		return w[:len(w)-1]
	}
	return w
}
