package solution

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	vehErrors "mercator-hq/configurator/pkg/vehicle/errors"
	"mercator-hq/configurator/pkg/vehicle/grammar"
)

// Selection is one mark and the option chosen for it.
type Selection struct {
	Mark   string
	Option string
}

// String returns "mark=option".
func (s Selection) String() string {
	return s.Mark + "=" + s.Option
}

// Fields holds the data a Solution is made of.
type Fields struct {
	FullDescription  string
	ShortDescription string
	Price            decimal.Decimal
	ModelName        string
	MarkPath         []Selection
	Hash             string
}

// Solution is a priced, described and fingerprinted selection path. It owns
// copies of its data and never changes after creation; a tree edit can make
// it stale but never alters it.
type Solution struct {
	fullDescription  string
	shortDescription string
	price            decimal.Decimal
	modelName        string
	markPath         []Selection
	hash             string
}

// New validates f and returns the Solution it describes.
// The hash is taken as given; it is normalized to lowercase.
func New(f Fields) (*Solution, error) {
	if f.Price.IsNegative() {
		return nil, vehErrors.NewInvalidSelection(fmt.Sprintf("price %s must not be negative", f.Price), nil)
	}
	if strings.TrimSpace(f.ModelName) == "" {
		return nil, vehErrors.NewInvalidSelection("solution must name a model", nil)
	}
	if len(f.MarkPath) == 0 {
		return nil, vehErrors.NewInvalidSelection("solution must select at least one option", nil)
	}
	for i, s := range f.MarkPath {
		if s.Mark == "" || s.Option == "" {
			return nil, vehErrors.NewInvalidSelection(fmt.Sprintf("selection %d must name a mark and an option", i+1), nil)
		}
	}
	if err := checkText(f); err != nil {
		return nil, err
	}
	hash := strings.ToLower(f.Hash)
	if !IsHash(hash) {
		return nil, vehErrors.NewInvalidSelection(fmt.Sprintf("hash %q must be %d hexadecimal characters", f.Hash, HashLength), nil)
	}

	return &Solution{
		fullDescription:  f.FullDescription,
		shortDescription: f.ShortDescription,
		price:            f.Price,
		modelName:        f.ModelName,
		markPath:         slices.Clone(f.MarkPath),
		hash:             hash,
	}, nil
}

// checkText rejects text a saved solutions document could not hold.
func checkText(f Fields) error {
	texts := []struct{ what, text string }{
		{"full description", f.FullDescription},
		{"short description", f.ShortDescription},
		{"model name", f.ModelName},
	}
	for _, s := range f.MarkPath {
		texts = append(texts, struct{ what, text string }{"selection", s.String()})
	}
	for _, t := range texts {
		if !grammar.ValidText(t.text) {
			return vehErrors.NewInvalidSelection(fmt.Sprintf("%s %q contains characters XML cannot hold", t.what, t.text), nil)
		}
	}
	return nil
}

func (s *Solution) FullDescription() string  { return s.fullDescription }
func (s *Solution) ShortDescription() string { return s.shortDescription }
func (s *Solution) Price() decimal.Decimal   { return s.price }
func (s *Solution) ModelName() string        { return s.modelName }
func (s *Solution) Hash() string             { return s.hash }

// MarkPath returns a copy of the selections in order.
func (s *Solution) MarkPath() []Selection {
	return slices.Clone(s.markPath)
}

// Fields returns a copy of the solution's data.
func (s *Solution) Fields() Fields {
	return Fields{
		FullDescription:  s.fullDescription,
		ShortDescription: s.shortDescription,
		Price:            s.price,
		ModelName:        s.modelName,
		MarkPath:         s.MarkPath(),
		Hash:             s.hash,
	}
}

// String returns a one-line summary for logs and listings.
func (s *Solution) String() string {
	return fmt.Sprintf("%s %s [%s] %s", s.hash[:8], s.modelName, EncodePath(s.markPath), s.price.StringFixed(2))
}
