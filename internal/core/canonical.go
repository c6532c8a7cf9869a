package core

import "sort"

// CanonicalKey identifies a field independently of any version layout.
type CanonicalKey string

const (
	KeyRingingScheme        CanonicalKey = "ringing_scheme"
	KeyIdentificationMethod CanonicalKey = "identification_method"
	KeyRingNumber           CanonicalKey = "ring_number"
	KeyRingVerification     CanonicalKey = "ring_verification"
	KeyMetalRingInfo        CanonicalKey = "metal_ring_info"
	KeyOtherMarks           CanonicalKey = "other_marks"

	KeySpecies         CanonicalKey = "species"
	KeySpeciesReported CanonicalKey = "species_reported"

	KeySex               CanonicalKey = "sex"
	KeySexReported       CanonicalKey = "sex_reported"
	KeyAge               CanonicalKey = "age"
	KeyAgeReported       CanonicalKey = "age_reported"
	KeyStatus            CanonicalKey = "status"
	KeyBroodSize         CanonicalKey = "brood_size"
	KeyPullusAge         CanonicalKey = "pullus_age"
	KeyPullusAgeAccuracy CanonicalKey = "pullus_age_accuracy"

	KeyCaptureDate  CanonicalKey = "capture_date"
	KeyDateAccuracy CanonicalKey = "date_accuracy"
	KeyCaptureTime  CanonicalKey = "capture_time"
	KeyFirstDate    CanonicalKey = "first_date"
	KeyElapsedDays  CanonicalKey = "elapsed_days"

	KeyLatitude           CanonicalKey = "latitude"
	KeyLongitude          CanonicalKey = "longitude"
	KeyCoordinateAccuracy CanonicalKey = "coordinate_accuracy"
	KeyPlaceCode          CanonicalKey = "place_code"
	KeyDistance           CanonicalKey = "distance"
	KeyDirection          CanonicalKey = "direction"

	KeyWingLength   CanonicalKey = "wing_length"
	KeyMass         CanonicalKey = "mass"
	KeyBillLength   CanonicalKey = "bill_length"
	KeyTarsusLength CanonicalKey = "tarsus_length"
	KeyFatScore     CanonicalKey = "fat_score"
	KeyMuscleScore  CanonicalKey = "muscle_score"
	KeyMoult        CanonicalKey = "moult"

	KeyManipulation          CanonicalKey = "manipulation"
	KeyMovedBefore           CanonicalKey = "moved_before"
	KeyCatchingMethod        CanonicalKey = "catching_method"
	KeyCatchingLures         CanonicalKey = "catching_lures"
	KeyCondition             CanonicalKey = "condition"
	KeyCircumstances         CanonicalKey = "circumstances"
	KeyCircumstancesPresumed CanonicalKey = "circumstances_presumed"
	KeyRemarks               CanonicalKey = "remarks"
)

var canonicalDomains = map[CanonicalKey]SemanticDomain{
	KeyRingingScheme:        DomainIdentification,
	KeyIdentificationMethod: DomainIdentification,
	KeyRingNumber:           DomainIdentification,
	KeyRingVerification:     DomainIdentification,
	KeyMetalRingInfo:        DomainIdentification,
	KeyOtherMarks:           DomainIdentification,

	KeySpecies:         DomainSpecies,
	KeySpeciesReported: DomainSpecies,

	KeySex:               DomainDemographics,
	KeySexReported:       DomainDemographics,
	KeyAge:               DomainDemographics,
	KeyAgeReported:       DomainDemographics,
	KeyStatus:            DomainDemographics,
	KeyBroodSize:         DomainDemographics,
	KeyPullusAge:         DomainDemographics,
	KeyPullusAgeAccuracy: DomainDemographics,

	KeyCaptureDate:  DomainTemporal,
	KeyDateAccuracy: DomainTemporal,
	KeyCaptureTime:  DomainTemporal,
	KeyFirstDate:    DomainTemporal,
	KeyElapsedDays:  DomainTemporal,

	KeyLatitude:           DomainSpatial,
	KeyLongitude:          DomainSpatial,
	KeyCoordinateAccuracy: DomainSpatial,
	KeyPlaceCode:          DomainSpatial,
	KeyDistance:           DomainSpatial,
	KeyDirection:          DomainSpatial,

	KeyWingLength:   DomainBiometrics,
	KeyMass:         DomainBiometrics,
	KeyBillLength:   DomainBiometrics,
	KeyTarsusLength: DomainBiometrics,
	KeyFatScore:     DomainBiometrics,
	KeyMuscleScore:  DomainBiometrics,
	KeyMoult:        DomainBiometrics,

	KeyManipulation:          DomainMethodology,
	KeyMovedBefore:           DomainMethodology,
	KeyCatchingMethod:        DomainMethodology,
	KeyCatchingLures:         DomainMethodology,
	KeyCondition:             DomainMethodology,
	KeyCircumstances:         DomainMethodology,
	KeyCircumstancesPresumed: DomainMethodology,
	KeyRemarks:               DomainMethodology,
}

// Domain returns the semantic domain of a canonical key.
func (k CanonicalKey) Domain() (SemanticDomain, bool) {
	d, ok := canonicalDomains[k]
	return d, ok
}

// CanonicalKeys returns every canonical key, sorted.
func CanonicalKeys() []CanonicalKey {
	keys := make([]CanonicalKey, 0, len(canonicalDomains))
	for k := range canonicalDomains {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func sortedValues(fields map[CanonicalKey]SemanticValue) []SemanticValue {
	vals := make([]SemanticValue, 0, len(fields))
	for _, v := range fields {
		vals = append(vals, v)
	}
	sort.Slice(vals, func(i, j int) bool {
		if vals[i].Position != vals[j].Position {
			return vals[i].Position < vals[j].Position
		}
		return vals[i].Key < vals[j].Key
	})
	return vals
}
