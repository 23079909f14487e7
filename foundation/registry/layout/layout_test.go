package layout_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/registry/foundation/registry/layout"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

type record struct {
	ID       string
	Hash     [32]byte
	Stamp    uint64
	internal int
	Skipped  string `rlp:"-"`
}

type reordered struct {
	Hash  [32]byte
	ID    string
	Stamp uint64
}

type widened struct {
	ID    string
	Hash  [64]byte
	Stamp uint64
}

type grown struct {
	ID    string
	Hash  [32]byte
	Stamp uint64
	Extra string
}

type ext struct {
	CID string
}

// =============================================================================

func Test_Fields(t *testing.T) {
	exp := []layout.Field{
		{Name: "ID", Type: "string"},
		{Name: "Hash", Type: "bytes32"},
		{Name: "Stamp", Type: "uint64"},
	}

	t.Log("Given the need to describe a record in its physical order.")
	{
		got := layout.Fields(record{})
		if len(got) != len(exp) {
			t.Logf("\t%s\tgot: %v", failed, got)
			t.Logf("\t%s\texp: %v", failed, exp)
			t.Fatalf("\t%s\tShould skip unexported and rlp:\"-\" fields.", failed)
		}
		t.Logf("\t%s\tShould skip unexported and rlp:\"-\" fields.", success)

		for i := range exp {
			if got[i] != exp[i] {
				t.Fatalf("\t%s\tShould describe field %d as %v, got %v.", failed, i, exp[i], got[i])
			}
		}
		t.Logf("\t%s\tShould describe every field with its encoded shape.", success)

		if fields := layout.Fields(nil); fields != nil {
			t.Fatalf("\t%s\tShould describe a raw slot with no fields, got %v.", failed, fields)
		}
		t.Logf("\t%s\tShould describe a raw slot with no fields.", success)
	}
}

func Test_Check(t *testing.T) {
	base, err := layout.New(1,
		layout.NewSlot("meta", 'M', nil),
		layout.NewSlot("records", 'R', record{}),
	)
	if err != nil {
		t.Fatalf("Should be able to construct the base layout: %s", err)
	}

	type table struct {
		name  string
		next  func() (layout.Layout, error)
		valid bool
	}

	tt := []table{
		{
			name: "append",
			next: func() (layout.Layout, error) {
				return base.Extend(2, layout.NewSlot("ext", 'X', ext{}))
			},
			valid: true,
		},
		{
			name: "same",
			next: func() (layout.Layout, error) {
				return layout.New(2, base.Slots...)
			},
			valid: true,
		},
		{
			name: "version",
			next: func() (layout.Layout, error) {
				return layout.New(1, append(base.Slots, layout.NewSlot("ext", 'X', ext{}))...)
			},
		},
		{
			name: "reorder-fields",
			next: func() (layout.Layout, error) {
				return layout.New(2, base.Slots[0], layout.NewSlot("records", 'R', reordered{}))
			},
		},
		{
			name: "resize-field",
			next: func() (layout.Layout, error) {
				return layout.New(2, base.Slots[0], layout.NewSlot("records", 'R', widened{}))
			},
		},
		{
			name: "grow-record",
			next: func() (layout.Layout, error) {
				return layout.New(2, base.Slots[0], layout.NewSlot("records", 'R', grown{}))
			},
		},
		{
			name: "move-prefix",
			next: func() (layout.Layout, error) {
				return layout.New(2, base.Slots[0], layout.NewSlot("records", 'r', record{}))
			},
		},
		{
			name: "reorder-slots",
			next: func() (layout.Layout, error) {
				return layout.New(2, base.Slots[1], base.Slots[0])
			},
		},
		{
			name: "remove-slot",
			next: func() (layout.Layout, error) {
				return layout.New(2, base.Slots[0])
			},
		},
		{
			name: "prefix-collision",
			next: func() (layout.Layout, error) {
				return layout.Layout{Version: 2, Slots: append(append([]layout.Slot{}, base.Slots...), layout.NewSlot("ext", 'R', ext{}))}, nil
			},
		},
	}

	t.Log("Given the need to refuse layouts that move existing state.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen upgrading with %q.", testID, tst.name)
				{
					next, err := tst.next()
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to construct the next layout: %s", failed, testID, err)
					}

					err = layout.Check(base, next)
					switch tst.valid {
					case true:
						if err != nil {
							t.Fatalf("\t%s\tTest %d:\tShould accept the layout: %s", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould accept the layout.", success, testID)

					default:
						if !errors.Is(err, layout.ErrIncompatible) {
							t.Fatalf("\t%s\tTest %d:\tShould reject the layout as incompatible: %v", failed, testID, err)
						}
						t.Logf("\t%s\tTest %d:\tShould reject the layout as incompatible: %s", success, testID, err)
					}
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_EncodeDecode(t *testing.T) {
	l, err := layout.New(3,
		layout.NewSlot("meta", 'M', nil),
		layout.NewSlot("records", 'R', record{}),
	)
	if err != nil {
		t.Fatalf("Should be able to construct the layout: %s", err)
	}

	data, err := l.Encode()
	if err != nil {
		t.Fatalf("Should be able to encode the layout: %s", err)
	}

	got, err := layout.Decode(data)
	if err != nil {
		t.Fatalf("Should be able to decode the layout: %s", err)
	}

	if !got.Equal(l) {
		t.Logf("got: %v", got.Slots)
		t.Logf("exp: %v", l.Slots)
		t.Fatalf("Should get back the same layout.")
	}
}

func Test_Validate(t *testing.T) {
	if _, err := layout.New(0, layout.NewSlot("meta", 'M', nil)); err == nil {
		t.Fatalf("Should reject a zero version.")
	}

	if _, err := layout.New(1); err == nil {
		t.Fatalf("Should reject a layout without slots.")
	}

	if _, err := layout.New(1, layout.NewSlot("meta", 'M', nil), layout.NewSlot("meta", 'N', nil)); err == nil {
		t.Fatalf("Should reject a duplicate slot name.")
	}

	if _, err := layout.New(1, layout.NewSlot("meta", 'M', nil), layout.NewSlot("other", 'M', nil)); err == nil {
		t.Fatalf("Should reject a duplicate prefix.")
	}
}
