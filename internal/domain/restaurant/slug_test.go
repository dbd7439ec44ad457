package restaurant

import (
	"errors"
	"regexp"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain", in: "Burger Barn", want: "burger-barn"},
		{name: "accents_and_punctuation", in: "Café Déjà Vu!", want: "cafe-deja-vu"},
		{name: "collapsed_spaces", in: "  The   Golden  Spoon  ", want: "the-golden-spoon"},
		{name: "numbers_kept", in: "Pizza 66", want: "pizza-66"},
		{name: "symbols_only", in: "!!! ???", want: ""},
		{name: "existing_hyphens", in: "Farm-to-Table", want: "farm-to-table"},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.in)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNewSlug(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	slug, err := NewSlug("Café Déjà Vu!", now)
	if err != nil {
		t.Fatalf("NewSlug: %v", err)
	}

	if ok, _ := regexp.MatchString(`^cafe-deja-vu-\d+$`, slug); !ok {
		t.Errorf("slug = %q, want cafe-deja-vu-<digits>", slug)
	}
}

func TestNewSlugRejectsEmptyNormalization(t *testing.T) {
	_, err := NewSlug("!!!", time.Now())

	if !errors.Is(err, ErrUnsluggableName) {
		t.Fatalf("err = %v, want ErrUnsluggableName", err)
	}
}

func TestNewSlugUniqueAcrossInstants(t *testing.T) {
	a, err := NewSlug("Burger Barn", time.UnixMilli(1700000000000))
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewSlug("Burger Barn", time.UnixMilli(1700000000001))
	if err != nil {
		t.Fatal(err)
	}

	if a == b {
		t.Errorf("slugs for distinct instants collide: %q", a)
	}
}
