// Package model defines the canonical business record and its field registry.
package model

import (
	"strconv"
	"time"
)

// Business is the canonical directory record for a veteran-owned business.
// Field names (the db tags) are shared by the store columns, the merge
// engine, and the quality calculators.
type Business struct {
	ID int64 `json:"id" db:"id"`

	// Official registration data (SAM.gov).
	UEI                    string `json:"uei,omitempty" db:"uei"`
	CAGECode               string `json:"cage_code,omitempty" db:"cage_code"`
	LegalName              string `json:"legal_business_name" db:"legal_business_name"`
	BusinessType           string `json:"business_type,omitempty" db:"business_type"`
	RegistrationStatus     string `json:"registration_status,omitempty" db:"registration_status"`
	RegistrationExpiration string `json:"registration_expiration,omitempty" db:"registration_expiration"`
	EntityStartDate        string `json:"entity_start_date,omitempty" db:"entity_start_date"`

	// Verified industry data.
	NAICSCodes        string `json:"naics_codes,omitempty" db:"naics_codes"`
	NAICSDescriptions string `json:"naics_descriptions,omitempty" db:"naics_descriptions"`
	DBAName           string `json:"dba_name,omitempty" db:"dba_name"`
	ServiceBranch     string `json:"service_branch,omitempty" db:"service_branch"`
	OwnerName         string `json:"owner_name,omitempty" db:"owner_name"`
	CertificationDate string `json:"certification_date,omitempty" db:"certification_date"`

	// Third-party contact data.
	Phone       string `json:"phone,omitempty" db:"phone"`
	Email       string `json:"email,omitempty" db:"email"`
	Website     string `json:"website,omitempty" db:"website"`
	LinkedInURL string `json:"linkedin_url,omitempty" db:"linkedin_url"`

	// Web-discovered location data.
	AddressLine1  string   `json:"physical_address_line1,omitempty" db:"physical_address_line1"`
	AddressLine2  string   `json:"physical_address_line2,omitempty" db:"physical_address_line2"`
	City          string   `json:"city,omitempty" db:"city"`
	State         string   `json:"state,omitempty" db:"state"`
	ZipCode       string   `json:"zip_code,omitempty" db:"zip_code"`
	Country       string   `json:"country,omitempty" db:"country"`
	Latitude      *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude     *float64 `json:"longitude,omitempty" db:"longitude"`
	DistanceMiles *float64 `json:"distance_miles,omitempty" db:"distance_miles"`

	// Provenance.
	Source string `json:"source,omitempty" db:"source"`
	Notes  string `json:"notes,omitempty" db:"notes"`

	DateAdded   time.Time `json:"date_added" db:"date_added"`
	DateUpdated time.Time `json:"date_updated" db:"date_updated"`
}

// Field name constants, matching store column names.
const (
	FieldUEI                    = "uei"
	FieldCAGECode               = "cage_code"
	FieldLegalName              = "legal_business_name"
	FieldBusinessType           = "business_type"
	FieldRegistrationStatus     = "registration_status"
	FieldRegistrationExpiration = "registration_expiration"
	FieldEntityStartDate        = "entity_start_date"
	FieldNAICSCodes             = "naics_codes"
	FieldNAICSDescriptions      = "naics_descriptions"
	FieldDBAName                = "dba_name"
	FieldServiceBranch          = "service_branch"
	FieldOwnerName              = "owner_name"
	FieldCertificationDate      = "certification_date"
	FieldPhone                  = "phone"
	FieldEmail                  = "email"
	FieldWebsite                = "website"
	FieldLinkedInURL            = "linkedin_url"
	FieldAddressLine1           = "physical_address_line1"
	FieldAddressLine2           = "physical_address_line2"
	FieldCity                   = "city"
	FieldState                  = "state"
	FieldZipCode                = "zip_code"
	FieldCountry                = "country"
	FieldLatitude               = "latitude"
	FieldLongitude              = "longitude"
	FieldDistanceMiles          = "distance_miles"
	FieldSource                 = "source"
	FieldNotes                  = "notes"
)

// fieldAccess provides uniform by-name access to a Business field so the
// mergeable-fields list and the quality checklists can be driven by data.
type fieldAccess struct {
	value func(*Business) any
	has   func(*Business) bool
	copy  func(dst, src *Business)
	set   func(*Business, any) bool
}

func strField(get func(*Business) *string) fieldAccess {
	return fieldAccess{
		value: func(b *Business) any { return *get(b) },
		has:   func(b *Business) bool { return *get(b) != "" },
		copy:  func(dst, src *Business) { *get(dst) = *get(src) },
		set: func(b *Business, v any) bool {
			s, ok := v.(string)
			if ok {
				*get(b) = s
			}
			return ok
		},
	}
}

func floatField(get func(*Business) **float64) fieldAccess {
	return fieldAccess{
		value: func(b *Business) any {
			if p := *get(b); p != nil {
				return *p
			}
			return nil
		},
		has: func(b *Business) bool { return *get(b) != nil },
		copy: func(dst, src *Business) {
			if p := *get(src); p != nil {
				v := *p
				*get(dst) = &v
			}
		},
		set: func(b *Business, v any) bool {
			switch x := v.(type) {
			case nil:
				*get(b) = nil
			case float64:
				*get(b) = &x
			case *float64:
				*get(b) = x
			default:
				return false
			}
			return true
		},
	}
}

var fieldRegistry = map[string]fieldAccess{
	FieldUEI:                    strField(func(b *Business) *string { return &b.UEI }),
	FieldCAGECode:               strField(func(b *Business) *string { return &b.CAGECode }),
	FieldLegalName:              strField(func(b *Business) *string { return &b.LegalName }),
	FieldBusinessType:           strField(func(b *Business) *string { return &b.BusinessType }),
	FieldRegistrationStatus:     strField(func(b *Business) *string { return &b.RegistrationStatus }),
	FieldRegistrationExpiration: strField(func(b *Business) *string { return &b.RegistrationExpiration }),
	FieldEntityStartDate:        strField(func(b *Business) *string { return &b.EntityStartDate }),
	FieldNAICSCodes:             strField(func(b *Business) *string { return &b.NAICSCodes }),
	FieldNAICSDescriptions:      strField(func(b *Business) *string { return &b.NAICSDescriptions }),
	FieldDBAName:                strField(func(b *Business) *string { return &b.DBAName }),
	FieldServiceBranch:          strField(func(b *Business) *string { return &b.ServiceBranch }),
	FieldOwnerName:              strField(func(b *Business) *string { return &b.OwnerName }),
	FieldCertificationDate:      strField(func(b *Business) *string { return &b.CertificationDate }),
	FieldPhone:                  strField(func(b *Business) *string { return &b.Phone }),
	FieldEmail:                  strField(func(b *Business) *string { return &b.Email }),
	FieldWebsite:                strField(func(b *Business) *string { return &b.Website }),
	FieldLinkedInURL:            strField(func(b *Business) *string { return &b.LinkedInURL }),
	FieldAddressLine1:           strField(func(b *Business) *string { return &b.AddressLine1 }),
	FieldAddressLine2:           strField(func(b *Business) *string { return &b.AddressLine2 }),
	FieldCity:                   strField(func(b *Business) *string { return &b.City }),
	FieldState:                  strField(func(b *Business) *string { return &b.State }),
	FieldZipCode:                strField(func(b *Business) *string { return &b.ZipCode }),
	FieldCountry:                strField(func(b *Business) *string { return &b.Country }),
	FieldLatitude:               floatField(func(b *Business) **float64 { return &b.Latitude }),
	FieldLongitude:              floatField(func(b *Business) **float64 { return &b.Longitude }),
	FieldDistanceMiles:          floatField(func(b *Business) **float64 { return &b.DistanceMiles }),
	FieldSource:                 strField(func(b *Business) *string { return &b.Source }),
	FieldNotes:                  strField(func(b *Business) *string { return &b.Notes }),
}

// MergeableFields lists the fields the merge engine may back-fill, in a
// stable order. Source and notes are handled separately (append-only).
var MergeableFields = []string{
	FieldUEI, FieldCAGECode, FieldLegalName, FieldDBAName,
	FieldBusinessType, FieldRegistrationStatus, FieldRegistrationExpiration,
	FieldEntityStartDate,
	FieldNAICSCodes, FieldNAICSDescriptions, FieldServiceBranch,
	FieldOwnerName, FieldCertificationDate,
	FieldPhone, FieldEmail, FieldWebsite, FieldLinkedInURL,
	FieldAddressLine1, FieldAddressLine2, FieldCity, FieldState,
	FieldZipCode, FieldCountry,
	FieldLatitude, FieldLongitude, FieldDistanceMiles,
}

// KnownField reports whether name is a registered business field.
func KnownField(name string) bool {
	_, ok := fieldRegistry[name]
	return ok
}

// Has reports whether the named field is non-empty on b.
// Unknown field names report false.
func (b *Business) Has(name string) bool {
	fa, ok := fieldRegistry[name]
	return ok && fa.has(b)
}

// Value returns the named field's value, or nil for empty float fields
// and unknown names. String fields return their (possibly empty) value.
func (b *Business) Value(name string) any {
	fa, ok := fieldRegistry[name]
	if !ok {
		return nil
	}
	return fa.value(b)
}

// CopyField copies the named field's value from src into dst.
func CopyField(dst, src *Business, name string) {
	if fa, ok := fieldRegistry[name]; ok {
		fa.copy(dst, src)
	}
}

// SetField sets the named field from a value of its natural type (string
// for text fields, float64 or *float64 for coordinates). It reports false
// for unknown names or mismatched types.
func SetField(b *Business, name string, value any) bool {
	fa, ok := fieldRegistry[name]
	if !ok {
		return false
	}
	return fa.set(b, value)
}

// DisplayValue renders a field as a string for export and search output.
func (b *Business) DisplayValue(name string) string {
	v := b.Value(name)
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return ""
	}
}
