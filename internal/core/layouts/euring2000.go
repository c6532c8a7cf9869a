package layouts

import "github.com/JonMunkholm/euring/internal/core"

func init() {
	registerEuring2000()
}

// identificationFields are the leading fields shared by the 2000 and 2020
// layouts.
func identificationFields() []core.FieldDefinition {
	return []core.FieldDefinition{
		field("ringing_scheme", 3, core.KeyRingingScheme, core.EncCode),
		field("primary_identification_method", 2, core.KeyIdentificationMethod, core.EncCode),
		field("identification_number", 10, core.KeyRingNumber, core.EncRing, mandatory(), describe("Ring number, dot padded")),
		field("verification_of_metal_ring", 1, core.KeyRingVerification, core.EncCode),
		field("metal_ring_information", 1, core.KeyMetalRingInfo, core.EncCode),
		field("other_marks_information", 2, core.KeyOtherMarks, core.EncCode),
		field("species_mentioned", 5, core.KeySpeciesReported, core.EncDigits, describe("Species as reported")),
		field("species_concluded", 5, core.KeySpecies, core.EncDigits, mandatory(), describe("Species as concluded by the scheme")),
		field("manipulated", 1, core.KeyManipulation, core.EncCode),
		field("moved_before_encounter", 1, core.KeyMovedBefore, core.EncCode),
		field("catching_method", 1, core.KeyCatchingMethod, core.EncCode),
		field("catching_lures", 1, core.KeyCatchingLures, core.EncCode),
		field("sex_mentioned", 1, core.KeySexReported, core.EncCode),
		field("sex_concluded", 1, core.KeySex, core.EncCode),
		field("age_mentioned", 1, core.KeyAgeReported, core.EncCode),
		field("age_concluded", 1, core.KeyAge, core.EncCode),
		field("status", 1, core.KeyStatus, core.EncCode),
		field("brood_size", 2, core.KeyBroodSize, core.EncDigits),
		field("pullus_age", 2, core.KeyPullusAge, core.EncDigits, unit("days", 1)),
		field("accuracy_of_pullus_age", 1, core.KeyPullusAgeAccuracy, core.EncCode),
	}
}

// modernTables are the code tables of the 2000 and 2020 layouts.
func modernTables() map[string][]core.LookupEntry {
	return map[string][]core.LookupEntry{
		"ringing_scheme":                schemeCodes,
		"primary_identification_method": identificationMethodCodes,
		"verification_of_metal_ring":    verificationCodes,
		"metal_ring_information":        metalRingCodes,
		"other_marks_information":       otherMarksCodes,
		"manipulated":                   manipulationCodes,
		"moved_before_encounter":        movedBeforeCodes,
		"catching_method":               catchingMethodCodes,
		"catching_lures":                luresCodes,
		"sex_mentioned":                 sexCodes,
		"sex_concluded":                 sexCodes,
		"age_mentioned":                 ageCodes,
		"age_concluded":                 ageCodes,
		"status":                        statusCodes,
		"accuracy_of_pullus_age":        pullusAccuracyCodes,
		"accuracy_of_date":              accuracyCodes,
		"accuracy_of_coordinates":       coordinateAccuracyCodes,
		"condition":                     conditionCodes,
		"circumstances":                 circumstancesCodes,
		"circumstances_presumed":        presumedCodes,
	}
}

func registerEuring2000() {
	fields := identificationFields()
	fields = append(fields,
		field("day", 2, core.KeyCaptureDate, core.EncDateDay, mandatory()),
		field("month", 2, core.KeyCaptureDate, core.EncDateMonth, mandatory()),
		field("year", 4, core.KeyCaptureDate, core.EncDateYear, mandatory()),
		field("accuracy_of_date", 1, core.KeyDateAccuracy, core.EncCode),
		field("time", 4, core.KeyCaptureTime, core.EncTimeHHMM, describe("HHMM, local time")),
		field("place_code", 4, core.KeyPlaceCode, core.EncPlain),
		field("latitude", 7, core.KeyLatitude, core.EncCoordDMS, describe("+/-DDMMSS")),
		field("longitude", 8, core.KeyLongitude, core.EncCoordDMS, describe("+/-DDDMMSS")),
		field("accuracy_of_coordinates", 1, core.KeyCoordinateAccuracy, core.EncCode),
		field("condition", 1, core.KeyCondition, core.EncCode),
		field("circumstances", 2, core.KeyCircumstances, core.EncCode),
		field("circumstances_presumed", 1, core.KeyCircumstancesPresumed, core.EncCode),
		filler("euring_code_identifier", "4", core.DomainIdentification),
		field("distance", 5, core.KeyDistance, core.EncDigits, unit("km", 1)),
		field("direction", 3, core.KeyDirection, core.EncDigits, unit("degrees", 1)),
		field("elapsed_time", 5, core.KeyElapsedDays, core.EncDigits, unit("days", 1)),
	)

	register(core.EuringVersion{
		ID:          "euring_2000",
		Year:        2000,
		Name:        "EURING 2000",
		Description: "Fixed-width exchange code, EPE compatible",
		Format: core.FormatSpec{
			Layout:    core.LayoutFixedWidth,
			MinLength: 94,
			MaxLength: 94,
		},
		Fields: fields,
		Discriminants: []core.DiscriminantSpec{
			{Name: "scheme_prefix", Kind: core.DiscRecordPattern, Pattern: `^[A-Z]{3}`, Weight: 0.1},
			{Name: "dms_latitude", Kind: core.DiscFieldPattern, Field: "latitude", Pattern: `^[+-][0-9]{6}$`, Weight: 0.1},
		},
	}, modernTables())
}
