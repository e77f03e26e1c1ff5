package smarts

import (
	"strings"
)

// Options controls what the encoder writes.  The zero value is the default:
// stereo is written, both hydrogen sources are counted, aromaticity is
// perceived and ring closures above 99 use the extended %NNN form.
type Options struct {
	// IgnoreStereo turns off both bond and atom stereo.
	IgnoreStereo     bool `json:"ignore_stereo,omitempty" mapstructure:"ignore_stereo"`
	IgnoreStereoBond bool `json:"ignore_stereo_bond,omitempty" mapstructure:"ignore_stereo_bond"`
	IgnoreStereoAtom bool `json:"ignore_stereo_atom,omitempty" mapstructure:"ignore_stereo_atom"`

	IgnoreExplicitHydrogens bool `json:"ignore_explicit_hydrogens,omitempty" mapstructure:"ignore_explicit_hydrogens"`
	IgnoreImplicitHydrogens bool `json:"ignore_implicit_hydrogens,omitempty" mapstructure:"ignore_implicit_hydrogens"`

	// StrictRingClosures fails the write when more than MaxRingClosure
	// closure numbers are needed.
	StrictRingClosures bool `json:"strict_ring_closures,omitempty" mapstructure:"strict_ring_closures"`

	// SkipAromaticity disables aromaticity perception; every atom is then
	// written with its upper-case symbol.
	SkipAromaticity bool `json:"skip_aromaticity,omitempty" mapstructure:"skip_aromaticity"`
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{}
}

// Normalize folds IgnoreStereo into the two stereo sub-flags.
func (o Options) Normalize() Options {
	if o.IgnoreStereo {
		o.IgnoreStereoBond = true
		o.IgnoreStereoAtom = true
	}
	return o
}

func (o Options) ignoreStereoBond() bool {
	return o.IgnoreStereo || o.IgnoreStereoBond
}

func (o Options) ignoreStereoAtom() bool {
	return o.IgnoreStereo || o.IgnoreStereoAtom
}

func (o Options) ignoresHydrogens() bool {
	return o.IgnoreExplicitHydrogens || o.IgnoreImplicitHydrogens
}

// Key returns a stable textual form of the normalized options, used to build
// cache keys.
func (o Options) Key() string {
	n := o.Normalize()
	flags := []struct {
		name string
		on   bool
	}{
		{"sb", n.IgnoreStereoBond},
		{"sa", n.IgnoreStereoAtom},
		{"eh", n.IgnoreExplicitHydrogens},
		{"ih", n.IgnoreImplicitHydrogens},
		{"strict", n.StrictRingClosures},
		{"noarom", n.SkipAromaticity},
	}
	var parts []string
	for _, f := range flags {
		if f.on {
			parts = append(parts, f.name)
		}
	}
	if len(parts) == 0 {
		return "default"
	}
	return strings.Join(parts, ",")
}

//Personal.AI order the ending
