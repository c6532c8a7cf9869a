package layouts

import "github.com/JonMunkholm/euring/internal/core"

func init() {
	registerEuring2020()
}

func registerEuring2020() {
	fields := identificationFields()
	fields = append(fields,
		field("date", 8, core.KeyCaptureDate, core.EncDateDMY8, mandatory(), describe("DDMMYYYY")),
		field("accuracy_of_date", 1, core.KeyDateAccuracy, core.EncCode),
		field("time", 4, core.KeyCaptureTime, core.EncTimeHHMM),
		field("place_code", 4, core.KeyPlaceCode, core.EncPlain),
		field("latitude", 9, core.KeyLatitude, core.EncCoordDecimal, decimals(4), describe("Signed decimal degrees")),
		field("longitude", 9, core.KeyLongitude, core.EncCoordDecimal, decimals(4), describe("Signed decimal degrees")),
		field("accuracy_of_coordinates", 1, core.KeyCoordinateAccuracy, core.EncCode),
		field("condition", 1, core.KeyCondition, core.EncCode),
		field("circumstances", 2, core.KeyCircumstances, core.EncCode),
		field("circumstances_presumed", 1, core.KeyCircumstancesPresumed, core.EncCode),
		filler("euring_code_identifier", "4", core.DomainIdentification),
		field("distance", 5, core.KeyDistance, core.EncDigits, unit("km", 1)),
		field("direction", 3, core.KeyDirection, core.EncDigits, unit("degrees", 1)),
		field("elapsed_time", 5, core.KeyElapsedDays, core.EncDigits, unit("days", 1)),
		field("wing_length", 5, core.KeyWingLength, core.EncDecimal, unit("mm", 0), decimals(1)),
		field("mass", 6, core.KeyMass, core.EncDecimal, unit("g", 0), decimals(1)),
		field("bill_length", 5, core.KeyBillLength, core.EncDecimal, unit("mm", 0), decimals(1)),
		field("tarsus_length", 5, core.KeyTarsusLength, core.EncDecimal, unit("mm", 0), decimals(1)),
		field("fat_score", 1, core.KeyFatScore, core.EncCode),
		field("pectoral_muscle", 1, core.KeyMuscleScore, core.EncCode),
		field("moult", 1, core.KeyMoult, core.EncCode),
		field("remarks", 100, core.KeyRemarks, core.EncPlain),
	)

	tables := modernTables()
	tables["fat_score"] = fatCodes
	tables["pectoral_muscle"] = muscleCodes
	tables["moult"] = moultCodes

	register(core.EuringVersion{
		ID:          "euring_2020",
		Year:        2020,
		Name:        "EURING 2020",
		Description: "Pipe-delimited code with decimal coordinates and biometrics",
		Format: core.FormatSpec{
			Layout:    core.LayoutDelimited,
			Separator: "|",
			MinLength: 60,
			MaxLength: 512,
		},
		Fields: fields,
		Discriminants: []core.DiscriminantSpec{
			{Name: "pipe_count", Kind: core.DiscMinSeparators, Count: 20, Weight: 0.1},
			{Name: "scheme_field", Kind: core.DiscFieldPattern, Field: "ringing_scheme", Pattern: `^[A-Z]{3}$`, Weight: 0.1},
		},
	}, tables)
}
