package layouts

import "github.com/JonMunkholm/euring/internal/core"

func init() {
	registerEuring1979()
}

func registerEuring1979() {
	register(core.EuringVersion{
		ID:          "euring_1979",
		Year:        1979,
		Name:        "EURING 1979",
		Description: "Fixed-width code with two-digit years and biometrics",
		Format: core.FormatSpec{
			Layout:    core.LayoutFixedWidth,
			MinLength: 78,
			MaxLength: 78,
		},
		Fields: []core.FieldDefinition{
			field("species", 5, core.KeySpecies, core.EncDigits, mandatory()),
			field("scheme_country", 2, core.KeyRingingScheme, core.EncCode),
			field("ring_number", 7, core.KeyRingNumber, core.EncRing, mandatory()),
			field("age", 1, core.KeyAge, core.EncCode),
			field("sex", 1, core.KeySex, core.EncCode),
			field("status", 1, core.KeyStatus, core.EncCode),
			field("date_first", 6, core.KeyFirstDate, core.EncDateDMY6, describe("Date of first capture, DDMMYY")),
			field("date_current", 6, core.KeyCaptureDate, core.EncDateDMY6, mandatory(), describe("DDMMYY")),
			field("latitude", 6, core.KeyLatitude, core.EncCoordDMT, describe("DDMM, tenths of a minute, N or S")),
			field("longitude", 6, core.KeyLongitude, core.EncCoordDM),
			field("condition", 2, core.KeyCircumstances, core.EncCode),
			field("method", 1, core.KeyCatchingMethod, core.EncCode),
			field("accuracy", 2, core.KeyCoordinateAccuracy, core.EncCode),
			filler("filler_1", "--", core.DomainSpatial),
			field("wing", 3, core.KeyWingLength, core.EncScaled, unit("mm", 1)),
			field("weight", 4, core.KeyMass, core.EncScaled, unit("g", 0.1)),
			filler("filler_2", "--", core.DomainBiometrics),
			field("bill", 4, core.KeyBillLength, core.EncScaled, unit("mm", 0.1)),
			field("tarsus", 2, core.KeyTarsusLength, core.EncScaled, unit("mm", 1)),
			filler("filler_3", "--", core.DomainBiometrics),
			field("fat", 1, core.KeyFatScore, core.EncCode),
			field("muscle", 1, core.KeyMuscleScore, core.EncCode),
			field("moult", 1, core.KeyMoult, core.EncCode),
			field("additional_code", 3, core.KeyRemarks, core.EncPlain),
			filler("padding", "-------", core.DomainMethodology),
		},
		Discriminants: []core.DiscriminantSpec{
			{Name: "species_prefix", Kind: core.DiscRecordPattern, Pattern: `^[0-9]{5}`, Weight: 0.1},
			{Name: "dash_fillers", Kind: core.DiscContains, Pattern: "--", Weight: 0.1},
		},
	}, map[string][]core.LookupEntry{
		"scheme_country": schemeCountryCodes,
		"age":            numericAgeCodes,
		"sex":            numericSexCodes,
		"status":         statusCodes,
		"condition":      circumstancesCodes,
		"method":         numericMethodCodes,
		"accuracy":       coordinateAccuracyCodes1979,
		"fat":            fatCodes,
		"muscle":         muscleCodes,
		"moult":          moultCodes,
	})
}
