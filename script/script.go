package script

import (
	"encoding/json"
	"iter"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/pkg/errors"
)

// Script is a full movement script: ordered script-level properties (seeds,
// demo name and the like) followed by the frame bulks to execute.
type Script struct {
	properties *orderedmap.OrderedMap[string, string]

	FrameBulks []FrameBulk
}

// New returns an empty script.
func New() *Script {
	return &Script{
		properties: orderedmap.NewOrderedMap[string, string](),
	}
}

// SetProperty sets a script-level property, keeping first-set order.
func (s *Script) SetProperty(name, value string) {
	if s.properties == nil {
		s.properties = orderedmap.NewOrderedMap[string, string]()
	}
	s.properties.Set(name, value)
}

// Property returns a script-level property value.
func (s *Script) Property(name string) (string, bool) {
	if s.properties == nil {
		return "", false
	}
	return s.properties.Get(name)
}

// Properties iterates the script-level properties in file order.
func (s *Script) Properties() iter.Seq2[string, string] {
	return func(yield func(string, string) bool) {
		if s.properties == nil {
			return
		}
		for el := s.properties.Front(); el != nil; el = el.Next() {
			if !yield(el.Key, el.Value) {
				return
			}
		}
	}
}

// Push appends a frame bulk to the script.
func (s *Script) Push(bulk FrameBulk) {
	s.FrameBulks = append(s.FrameBulks, bulk)
}

// Validate reports the first structural problem of the script, if any.
func (s *Script) Validate() error {
	if len(s.FrameBulks) == 0 {
		return errors.New("script has no frame bulks")
	}
	for i := range s.FrameBulks {
		if err := s.FrameBulks[i].Validate(); err != nil {
			return errors.Wrapf(err, "frame bulk %d", i)
		}
	}
	return nil
}

// Frames iterates every frame of the script in order, yielding the frame
// index and the bulk active on that frame. Run-length-encoded bulks are
// expanded, so a bulk with FrameCount 10 is yielded 10 times.
func (s *Script) Frames() iter.Seq2[int, *FrameBulk] {
	return func(yield func(int, *FrameBulk) bool) {
		frame := 0
		for i := range s.FrameBulks {
			bulk := &s.FrameBulks[i]
			for n := uint32(0); n < bulk.FrameCount; n++ {
				if !yield(frame, bulk) {
					return
				}
				frame++
			}
		}
	}
}

// TotalFrames returns the number of frames the script covers.
func (s *Script) TotalFrames() int {
	total := 0
	for i := range s.FrameBulks {
		total += int(s.FrameBulks[i].FrameCount)
	}
	return total
}

type scriptJSON struct {
	Properties []propertyJSON `json:"properties,omitempty"`
	FrameBulks []FrameBulk    `json:"frame_bulks"`
}

type propertyJSON struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MarshalJSON encodes the script with its properties in file order.
func (s *Script) MarshalJSON() ([]byte, error) {
	out := scriptJSON{FrameBulks: s.FrameBulks}
	for name, value := range s.Properties() {
		out.Properties = append(out.Properties, propertyJSON{Name: name, Value: value})
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a script, preserving property order.
func (s *Script) UnmarshalJSON(data []byte) error {
	var in scriptJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return errors.Wrap(err, "decoding script")
	}

	s.properties = orderedmap.NewOrderedMap[string, string]()
	for _, p := range in.Properties {
		s.properties.Set(p.Name, p.Value)
	}
	s.FrameBulks = in.FrameBulks
	return nil
}
