package extractor

import (
	"crypto/md5" //nolint:gosec // content fingerprint, not a security boundary
	"encoding/hex"
)

// NoCode is the Code value of a promotion that advertises no promo code
const NoCode = "No Code"

// Promotion is one offer extracted from the promotions page
type Promotion struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Details  string `json:"details"`
	Code     string `json:"code"`
	ImageURL string `json:"img_url"`
}

// HasCode reports whether a promo code was found
func (p Promotion) HasCode() bool {
	return p.Code != NoCode
}

// Fingerprint derives the stable identifier of a promotion from its title.
// Equal titles always share an id, which is what lets hero and article
// blocks for the same offer collapse into one record.
func Fingerprint(title string) string {
	sum := md5.Sum([]byte(title))
	return hex.EncodeToString(sum[:])
}
