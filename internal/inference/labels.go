package inference

import "fmt"

// LabelDecoder maps class indices back to disease names.
type LabelDecoder struct {
	classes []string
}

func NewLabelDecoder(classes []string) (*LabelDecoder, error) {
	if len(classes) == 0 {
		return nil, fmt.Errorf("label encoder has no classes")
	}
	out := make([]string, len(classes))
	copy(out, classes)
	return &LabelDecoder{classes: out}, nil
}

func (d *LabelDecoder) Len() int { return len(d.classes) }

func (d *LabelDecoder) Decode(i int) (string, error) {
	if i < 0 || i >= len(d.classes) {
		return "", fmt.Errorf("%w: %d (have %d labels)", ErrUnknownClass, i, len(d.classes))
	}
	return d.classes[i], nil
}
