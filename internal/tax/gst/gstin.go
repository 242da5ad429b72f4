package gst

import (
	"regexp"
	"strconv"
)

var (
	gstinPattern = regexp.MustCompile(`^\d{2}[A-Z]{5}\d{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	panPattern   = regexp.MustCompile(`^[A-Z]{5}\d{4}[A-Z]$`)
)

// stateNames maps two-digit GST state codes to their state or union territory.
var stateNames = map[string]string{
	"01": "Jammu and Kashmir",
	"02": "Himachal Pradesh",
	"03": "Punjab",
	"04": "Chandigarh",
	"05": "Uttarakhand",
	"06": "Haryana",
	"07": "Delhi",
	"08": "Rajasthan",
	"09": "Uttar Pradesh",
	"10": "Bihar",
	"11": "Sikkim",
	"12": "Arunachal Pradesh",
	"13": "Nagaland",
	"14": "Manipur",
	"15": "Mizoram",
	"16": "Tripura",
	"17": "Meghalaya",
	"18": "Assam",
	"19": "West Bengal",
	"20": "Jharkhand",
	"21": "Odisha",
	"22": "Chhattisgarh",
	"23": "Madhya Pradesh",
	"24": "Gujarat",
	"25": "Daman and Diu",
	"26": "Dadra and Nagar Haveli and Daman and Diu",
	"27": "Maharashtra",
	"28": "Andhra Pradesh (Old)",
	"29": "Karnataka",
	"30": "Goa",
	"31": "Lakshadweep",
	"32": "Kerala",
	"33": "Tamil Nadu",
	"34": "Puducherry",
	"35": "Andaman and Nicobar Islands",
	"36": "Telangana",
	"37": "Andhra Pradesh",
	"38": "Ladakh",
	"97": "Other Territory",
}

// ValidGSTIN checks the 15-character shape of a GSTIN. The check digit is not verified.
func ValidGSTIN(gstin string) bool {
	return len(gstin) == 15 && gstinPattern.MatchString(gstin)
}

// ValidPAN checks the 10-character shape of a PAN.
func ValidPAN(pan string) bool {
	return panPattern.MatchString(pan)
}

// StateCodeFromGSTIN returns the leading state code of a well-formed GSTIN.
func StateCodeFromGSTIN(gstin string) (string, bool) {
	if !ValidGSTIN(gstin) {
		return "", false
	}
	return gstin[:2], true
}

// PANFromGSTIN returns the PAN embedded at positions 3-12 of a GSTIN.
func PANFromGSTIN(gstin string) (string, bool) {
	if !ValidGSTIN(gstin) {
		return "", false
	}
	return gstin[2:12], true
}

// ValidStateCode reports whether code is a known two-digit GST state code.
func ValidStateCode(code string) bool {
	if len(code) != 2 {
		return false
	}
	if _, err := strconv.Atoi(code); err != nil {
		return false
	}
	_, ok := stateNames[code]
	return ok
}

// StateName returns the state or union territory name for a GST state code.
func StateName(code string) (string, bool) {
	name, ok := stateNames[code]
	return name, ok
}
