package gradereport

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"
	"errors"
	"regexp"
	"slices"
)

// student id shape: cohort prefix, two-digit admission year, one
// letter department code, then the serial
var idPattern = regexp.MustCompile(`(1[A-Z])(\d{2})([A-Z])\d+`)

// UnknownID is persisted when no student id could be found in the
// page; such reports still compute but all land on one bucket.
const UnknownID = "unknown"

var (
	ErrWrongCohort = errors.New("student is not in the supported department")
	ErrWrongYear   = errors.New("student admission year is not supported")
)

// Identity is the student id as scraped, split into the parts the
// cohort gate looks at.
type Identity struct {
	Raw        string
	Prefix     string
	Year       string
	Department string
}

// ResolveIdentity scans the page markup for the first thing shaped
// like a student id. Reports false when none is found, with the
// sentinel value already filled in.
func ResolveIdentity(markup string) (Identity, bool) {
	groups := idPattern.FindStringSubmatch(markup)
	if groups == nil {
		return Identity{Raw: UnknownID}, false
	}
	return Identity{
		Raw:        groups[0],
		Prefix:     groups[1],
		Year:       groups[2],
		Department: groups[3],
	}, true
}

// CheckEligibility gates the identity against the cohort rules. An
// unresolved identity passes; the gate only rejects students it can
// positively place outside the cohort.
func (id Identity) CheckEligibility(rules Rules) error {
	if id.Raw == UnknownID {
		return nil
	}
	if id.Prefix != rules.RequiredPrefix || id.Department != rules.RequiredDepartment {
		return ErrWrongCohort
	}
	if !slices.Contains(rules.AllowedYears, id.Year) {
		return ErrWrongYear
	}
	return nil
}

// Hash derives the storage key for this identity.
func (id Identity) Hash() string {
	return HashID(id.Raw)
}

// HashID derives the storage key for a raw student id: the hex SHA-512
// of the id, re-hashed with SHA-256, hex encoded. The intermediate hex
// step is load-bearing; rows written by earlier deployments were keyed
// this way and must keep matching.
func HashID(raw string) string {
	first := sha512.Sum512([]byte(raw))
	second := sha256.Sum256([]byte(hex.EncodeToString(first[:])))
	return hex.EncodeToString(second[:])
}
