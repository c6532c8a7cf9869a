package layouts

import "github.com/JonMunkholm/euring/internal/core"

func init() {
	registerEuring1966()
}

func registerEuring1966() {
	register(core.EuringVersion{
		ID:          "euring_1966",
		Year:        1966,
		Name:        "EURING 1966",
		Description: "Original space-separated exchange code",
		Format: core.FormatSpec{
			Layout:    core.LayoutDelimited,
			Separator: " ",
			MinLength: 55,
			MaxLength: 55,
		},
		Fields: []core.FieldDefinition{
			field("species_code", 4, core.KeySpecies, core.EncDigits, mandatory(), describe("EURING species number")),
			field("ring_number", 7, core.KeyRingNumber, core.EncRing, mandatory(), describe("Two letter series and five digits")),
			field("age_code", 1, core.KeyAge, core.EncCode),
			field("date_code", 8, core.KeyCaptureDate, core.EncDateDMY8, mandatory(), describe("DDMMYYYY")),
			field("latitude", 5, core.KeyLatitude, core.EncCoordDM, describe("DDMM plus N or S")),
			field("longitude", 6, core.KeyLongitude, core.EncCoordDM, describe("DDDMM plus E or W")),
			field("condition_code", 2, core.KeyCircumstances, core.EncCode),
			field("method_code", 1, core.KeyCatchingMethod, core.EncCode),
			field("wing_length", 3, core.KeyWingLength, core.EncScaled, unit("mm", 1)),
			field("weight", 4, core.KeyMass, core.EncScaled, unit("g", 0.1), describe("Tenths of a gram")),
			field("bill_length", 4, core.KeyBillLength, core.EncScaled, unit("mm", 0.1), describe("Tenths of a millimetre")),
		},
		Discriminants: []core.DiscriminantSpec{
			{Name: "ring_pattern", Kind: core.DiscFieldPattern, Field: "ring_number", Pattern: `^[A-Z]{2}[0-9]{5}$`, Weight: 0.1},
			{Name: "species_prefix", Kind: core.DiscRecordPattern, Pattern: `^[0-9]{4} `, Weight: 0.1},
		},
	}, map[string][]core.LookupEntry{
		"age_code":       numericAgeCodes,
		"condition_code": circumstancesCodes1966,
		"method_code":    numericMethodCodes,
	})
}
