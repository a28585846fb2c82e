package table

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// EnumType declares the set of values an enum component accepts
type EnumType struct {
	Name string
	// Labels maps value to display label. Empty when Validate decides membership.
	Labels   map[string]string
	Validate func(raw string) (string, error)
}

// EnumValue is a member of a declared enum
type EnumValue struct {
	Enum  string `json:"enum"`
	Value string `json:"value"`
}

func (v EnumValue) String() string {
	return v.Value
}

// NewEnumType builds an enum over a fixed value→label map
func NewEnumType(name string, labels map[string]string) *EnumType {
	return &EnumType{Name: name, Labels: labels}
}

// New constructs the enum member for raw
func (e *EnumType) New(raw string) (EnumValue, error) {
	if e.Validate != nil {
		value, err := e.Validate(raw)
		if err != nil {
			return EnumValue{}, err
		}
		return EnumValue{Enum: e.Name, Value: value}, nil
	}
	if _, ok := e.Labels[raw]; !ok {
		return EnumValue{}, fmt.Errorf("%q is not one of (%s)", raw, strings.Join(e.Values(), ", "))
	}
	return EnumValue{Enum: e.Name, Value: raw}, nil
}

// Values returns the sorted declared values
func (e *EnumType) Values() []string {
	values := make([]string, 0, len(e.Labels))
	for v := range e.Labels {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// UnknownCountry is reported for sessions that could not be geolocated
const UnknownCountry = "ZZ"

// Country is the ISO 3166-1 alpha-2 country enum
var Country = &EnumType{
	Name: "country",
	Validate: func(raw string) (string, error) {
		if raw == UnknownCountry {
			return raw, nil
		}
		region, err := language.ParseRegion(raw)
		if err != nil || !region.IsCountry() {
			return "", fmt.Errorf("%q is not an ISO 3166 country code", raw)
		}
		return region.String(), nil
	},
}

var (
	countryCodesOnce sync.Once
	countryCodes     []string
)

// CountryCodes lists every ISO 3166-1 alpha-2 country code in order
func CountryCodes() []string {
	countryCodesOnce.Do(func() {
		for a := 'A'; a <= 'Z'; a++ {
			for b := 'A'; b <= 'Z'; b++ {
				code := string([]rune{a, b})
				region, err := language.ParseRegion(code)
				if err == nil && region.IsCountry() && region.String() == code {
					countryCodes = append(countryCodes, code)
				}
			}
		}
	})
	return countryCodes
}

// CountryName returns the English name of a country code
func CountryName(code string) string {
	if code == UnknownCountry {
		return "Unknown"
	}
	region, err := language.ParseRegion(code)
	if err != nil {
		return code
	}
	if name := display.English.Regions().Name(region); name != "" {
		return name
	}
	return code
}
