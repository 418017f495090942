package carepackage

import (
	"encoding/json"
	"fmt"

	"github.com/maniacs-ops/airbitz-core/crypto"
)

type carePackageWire struct {
	ERQ   *crypto.Envelope `json:"ERQ,omitempty"`
	SNRP2 crypto.SNRP      `json:"SNRP2"`
	SNRP3 crypto.SNRP      `json:"SNRP3"`
	SNRP4 crypto.SNRP      `json:"SNRP4"`
}

// MarshalCarePackage encodes c as the {ERQ?, SNRP2, SNRP3, SNRP4} document.
func MarshalCarePackage(c CarePackage) ([]byte, error) {
	return json.Marshal(carePackageWire{
		ERQ:   c.ERQ,
		SNRP2: c.SNRP2,
		SNRP3: c.SNRP3,
		SNRP4: c.SNRP4,
	})
}

// ParseCarePackage decodes a CarePackage document, returning ErrParse if
// data isn't a structured object or is missing a required field.
func ParseCarePackage(data []byte) (CarePackage, error) {
	var w carePackageWire
	if err := json.Unmarshal(data, &w); err != nil {
		return CarePackage{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if isZeroSNRP(w.SNRP2) || isZeroSNRP(w.SNRP3) || isZeroSNRP(w.SNRP4) {
		return CarePackage{}, fmt.Errorf("%w: missing SNRP field",
			ErrParse)
	}
	return CarePackage{
		ERQ:   w.ERQ,
		SNRP2: w.SNRP2,
		SNRP3: w.SNRP3,
		SNRP4: w.SNRP4,
	}, nil
}

// loginPackageWire's SyncKey field name preserves the on-wire name spec.md
// documents as historical: it carries the value of ESyncKey.
type loginPackageWire struct {
	EMK     crypto.Envelope  `json:"EMK"`
	SyncKey crypto.Envelope  `json:"SyncKey"`
	ELP2    *crypto.Envelope `json:"ELP2,omitempty"`
	ELRA3   *crypto.Envelope `json:"ELRA3,omitempty"`
}

// MarshalLoginPackage encodes l as the {EMK, SyncKey, ELP2?, ELRA3?}
// document.
func MarshalLoginPackage(l LoginPackage) ([]byte, error) {
	return json.Marshal(loginPackageWire{
		EMK:     l.EMK,
		SyncKey: l.ESyncKey,
		ELP2:    l.ELP2,
		ELRA3:   l.ELRA3,
	})
}

// ParseLoginPackage decodes a LoginPackage document, returning ErrParse if
// data isn't a structured object or is missing a required field.
func ParseLoginPackage(data []byte) (LoginPackage, error) {
	var w loginPackageWire
	if err := json.Unmarshal(data, &w); err != nil {
		return LoginPackage{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(w.EMK.IV) == 0 || len(w.SyncKey.IV) == 0 {
		return LoginPackage{}, fmt.Errorf("%w: missing EMK or SyncKey",
			ErrParse)
	}
	if (w.ELP2 == nil) != (w.ELRA3 == nil) {
		return LoginPackage{}, fmt.Errorf(
			"%w: ELP2 and ELRA3 must be set together", ErrParse)
	}
	return LoginPackage{
		EMK:      w.EMK,
		ESyncKey: w.SyncKey,
		ELP2:     w.ELP2,
		ELRA3:    w.ELRA3,
	}, nil
}

func isZeroSNRP(s crypto.SNRP) bool {
	return len(s.Salt) == 0 && s.N == 0 && s.R == 0 && s.P == 0
}
