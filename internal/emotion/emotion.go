package emotion

import (
	"errors"
	"fmt"
)

// ErrUnknownEmotion is returned for codes outside the configured set.
var ErrUnknownEmotion = errors.New("unknown emotion")

// Code identifies one of the fixed check-in emotions. Codes are the grouping
// key for aggregation; display labels are derived and may change without
// affecting historical grouping.
type Code string

const (
	VeryHappy Code = "very_happy"
	Happy     Code = "happy"
	Neutral   Code = "neutral"
	Sad       Code = "sad"
	VerySad   Code = "very_sad"
	Angry     Code = "angry"
	Anxious   Code = "anxious"
)

// UnknownLabel is rendered wherever a record is missing a name, label or timestamp.
const UnknownLabel = "알 수 없음"

// codes in presentation order (also the tie-break order for chart bars).
var codes = []Code{VeryHappy, Happy, Neutral, Sad, VerySad, Angry, Anxious}

var labels = map[Code]string{
	VeryHappy: "😊 매우 좋아요",
	Happy:     "🙂 좋아요",
	Neutral:   "😐 보통이에요",
	Sad:       "😔 슬퍼요",
	VerySad:   "😢 매우 슬퍼요",
	Angry:     "😡 화나요",
	Anxious:   "😰 불안해요",
}

// Valid reports whether c is one of the configured codes.
func (c Code) Valid() bool {
	_, ok := labels[c]
	return ok
}

// Label returns the display label for c, or UnknownLabel for codes outside the set.
func (c Code) Label() string {
	if l, ok := labels[c]; ok {
		return l
	}
	return UnknownLabel
}

// Parse maps a submitted code string to a Code.
func Parse(s string) (Code, error) {
	c := Code(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w %q", ErrUnknownEmotion, s)
	}
	return c, nil
}

// Option pairs a code with its label for the selection UI.
type Option struct {
	Code  Code   `json:"code"`
	Label string `json:"label"`
}

// Options returns all selectable emotions in presentation order.
func Options() []Option {
	opts := make([]Option, 0, len(codes))
	for _, c := range codes {
		opts = append(opts, Option{Code: c, Label: c.Label()})
	}
	return opts
}

// rank returns the presentation-order index of a raw code string, with
// unrecognized codes sorting after all known ones.
func rank(code string) int {
	for i, c := range codes {
		if string(c) == code {
			return i
		}
	}
	return len(codes)
}
