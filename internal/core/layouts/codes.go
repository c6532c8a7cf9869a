package layouts

import "github.com/JonMunkholm/euring/internal/core"

// Code tables shared by the layouts. Meanings are kept identical across
// versions wherever the code sets overlap so that remapping can match on
// meaning rather than on the code itself.

var schemeCodes = []core.LookupEntry{
	{Code: "IAB", Meaning: "Italian Ringing Centre (ISPRA)"},
	{Code: "DEH", Meaning: "German Ringing Centre (Helgoland)"},
	{Code: "FRA", Meaning: "French Ringing Centre (MNHN)"},
	{Code: "GBR", Meaning: "British Trust for Ornithology"},
	{Code: "NLD", Meaning: "Dutch Ringing Centre (Vogeltrekstation)"},
	{Code: "ESP", Meaning: "Spanish Ringing Centre (SEO/BirdLife)"},
	{Code: "SWE", Meaning: "Swedish Ringing Centre (NRM)"},
	{Code: "NOR", Meaning: "Norwegian Ringing Centre (NINA)"},
	{Code: "FIN", Meaning: "Finnish Ringing Centre (Luomus)"},
	{Code: "POL", Meaning: "Polish Ringing Centre (RING)"},
}

// 1979 used two-letter country prefixes for the same schemes.
var schemeCountryCodes = []core.LookupEntry{
	{Code: "IA", Meaning: "Italian Ringing Centre (ISPRA)"},
	{Code: "DE", Meaning: "German Ringing Centre (Helgoland)"},
	{Code: "FR", Meaning: "French Ringing Centre (MNHN)"},
	{Code: "GB", Meaning: "British Trust for Ornithology"},
	{Code: "NL", Meaning: "Dutch Ringing Centre (Vogeltrekstation)"},
	{Code: "ES", Meaning: "Spanish Ringing Centre (SEO/BirdLife)"},
	{Code: "SE", Meaning: "Swedish Ringing Centre (NRM)"},
	{Code: "NO", Meaning: "Norwegian Ringing Centre (NINA)"},
	{Code: "FI", Meaning: "Finnish Ringing Centre (Luomus)"},
	{Code: "PL", Meaning: "Polish Ringing Centre (RING)"},
}

var identificationMethodCodes = []core.LookupEntry{
	{Code: "A0", Meaning: "Metal ring only"},
	{Code: "B0", Meaning: "Metal ring + colour ring(s)"},
	{Code: "C0", Meaning: "Metal ring + colour mark(s)"},
	{Code: "D0", Meaning: "Metal ring + flag(s)"},
	{Code: "E0", Meaning: "Metal ring + neck collar"},
	{Code: "F0", Meaning: "Metal ring + wing tag(s)"},
	{Code: "G0", Meaning: "Metal ring + leg streamer(s)"},
	{Code: "H0", Meaning: "Metal ring + radio transmitter"},
	{Code: "K0", Meaning: "Metal ring + satellite transmitter"},
	{Code: "L0", Meaning: "Metal ring + light level geolocator"},
	{Code: "R0", Meaning: "Metal ring + GPS logger"},
	{Code: "T0", Meaning: "Metal ring + other electronic device"},
}

var verificationCodes = []core.LookupEntry{
	{Code: "0", Meaning: "Not verified"},
	{Code: "1", Meaning: "Verified by scheme"},
	{Code: "9", Meaning: "Verification status unknown"},
}

var metalRingCodes = []core.LookupEntry{
	{Code: "0", Meaning: "Ring not mentioned"},
	{Code: "1", Meaning: "Ring confirmed present"},
	{Code: "2", Meaning: "Ring confirmed absent"},
	{Code: "3", Meaning: "Ring present but not readable"},
	{Code: "4", Meaning: "Ring present, partially readable"},
	{Code: "5", Meaning: "Ring present, fully readable"},
	{Code: "6", Meaning: "Ring replaced"},
	{Code: "7", Meaning: "Ring removed"},
}

var otherMarksCodes = []core.LookupEntry{
	{Code: "ZZ", Meaning: "No other marks"},
	{Code: "OM", Meaning: "Other marks present"},
	{Code: "OP", Meaning: "Other marks present, partially readable"},
	{Code: "OT", Meaning: "Other marks present, fully readable"},
	{Code: "MM", Meaning: "Multiple marks present"},
	{Code: "B-", Meaning: "Colour ring(s) - unspecified"},
	{Code: "BB", Meaning: "Colour ring(s) - both legs"},
	{Code: "BC", Meaning: "Colour ring(s) - left leg only"},
	{Code: "BD", Meaning: "Colour ring(s) - right leg only"},
	{Code: "C-", Meaning: "Colour mark(s) - unspecified"},
	{Code: "CB", Meaning: "Colour mark(s) - both legs"},
}

var ageCodes = []core.LookupEntry{
	{Code: "0", Meaning: "Age unknown"},
	{Code: "1", Meaning: "Pullus (nestling)"},
	{Code: "2", Meaning: "Fully grown, year of hatching unknown"},
	{Code: "3", Meaning: "First-year (hatched this calendar year)"},
	{Code: "4", Meaning: "After first-year, exact age unknown"},
	{Code: "5", Meaning: "Second-year"},
	{Code: "6", Meaning: "After second-year, exact age unknown"},
	{Code: "7", Meaning: "Third-year"},
	{Code: "8", Meaning: "After third-year, exact age unknown"},
	{Code: "9", Meaning: "Fourth-year"},
	{Code: "A", Meaning: "After fourth-year"},
	{Code: "B", Meaning: "Fifth-year"},
	{Code: "C", Meaning: "Sixth-year"},
	{Code: "D", Meaning: "Seventh-year"},
	{Code: "E", Meaning: "Eighth-year"},
	{Code: "F", Meaning: "Ninth-year"},
	{Code: "G", Meaning: "Tenth-year"},
	{Code: "H", Meaning: "After tenth-year"},
}

// Older schemes only used the numeric age codes.
var numericAgeCodes = ageCodes[:10]

var sexCodes = []core.LookupEntry{
	{Code: "M", Meaning: "Male"},
	{Code: "F", Meaning: "Female"},
	{Code: "U", Meaning: "Unknown/Undetermined"},
}

var numericSexCodes = []core.LookupEntry{
	{Code: "0", Meaning: "Unknown/Undetermined"},
	{Code: "1", Meaning: "Male"},
	{Code: "2", Meaning: "Female"},
}

var statusCodes = []core.LookupEntry{
	{Code: "U", Meaning: "Unknown or unrecorded"},
	{Code: "N", Meaning: "Nesting or breeding"},
	{Code: "R", Meaning: "Roosting assemblage"},
	{Code: "K", Meaning: "In colony, not necessarily breeding"},
	{Code: "M", Meaning: "Moulting assemblage"},
	{Code: "L", Meaning: "Apparently a local bird, not breeding"},
	{Code: "W", Meaning: "Apparently wintering in the locality"},
	{Code: "P", Meaning: "Passage bird"},
	{Code: "S", Meaning: "At sea"},
	{Code: "-", Meaning: "Pullus, status not applicable"},
}

var manipulationCodes = []core.LookupEntry{
	{Code: "N", Meaning: "Normal, not manipulated"},
	{Code: "H", Meaning: "Hand reared"},
	{Code: "K", Meaning: "Fledged from nest box"},
	{Code: "C", Meaning: "Captive for more than 24 hours"},
	{Code: "F", Meaning: "Transported more than 10 km"},
	{Code: "T", Meaning: "Transported less than 10 km"},
	{Code: "M", Meaning: "Manipulated, other"},
	{Code: "R", Meaning: "Ringing accident"},
	{Code: "E", Meaning: "Euthanised"},
	{Code: "P", Meaning: "Poor condition when caught"},
	{Code: "U", Meaning: "Uncoded or unknown"},
}

var movedBeforeCodes = []core.LookupEntry{
	{Code: "0", Meaning: "Not moved"},
	{Code: "2", Meaning: "Probably not moved"},
	{Code: "4", Meaning: "Probably moved"},
	{Code: "6", Meaning: "Certainly moved"},
	{Code: "9", Meaning: "Unknown"},
}

var catchingMethodCodes = []core.LookupEntry{
	{Code: "A", Meaning: "Mist net"},
	{Code: "B", Meaning: "Clap net"},
	{Code: "C", Meaning: "Cannon net"},
	{Code: "D", Meaning: "Drop trap"},
	{Code: "F", Meaning: "Funnel trap"},
	{Code: "G", Meaning: "Ground trap"},
	{Code: "H", Meaning: "Hand capture"},
	{Code: "L", Meaning: "Ladder trap"},
	{Code: "M", Meaning: "Multiple methods"},
	{Code: "N", Meaning: "Nest trap"},
	{Code: "O", Meaning: "Other method"},
	{Code: "R", Meaning: "Rocket net"},
	{Code: "S", Meaning: "Spring trap"},
	{Code: "U", Meaning: "Unknown method"},
	{Code: "W", Meaning: "Walk-in trap"},
	{Code: "-", Meaning: "Not applicable"},
}

// Numeric method codes of the older layouts.
var numericMethodCodes = []core.LookupEntry{
	{Code: "0", Meaning: "Unknown method"},
	{Code: "1", Meaning: "Mist net"},
	{Code: "2", Meaning: "Hand capture"},
	{Code: "3", Meaning: "Clap net"},
	{Code: "4", Meaning: "Nest trap"},
	{Code: "5", Meaning: "Other method"},
}

var luresCodes = []core.LookupEntry{
	{Code: "A", Meaning: "Audio playback"},
	{Code: "B", Meaning: "Bait (food)"},
	{Code: "C", Meaning: "Call imitation"},
	{Code: "D", Meaning: "Decoy bird"},
	{Code: "E", Meaning: "Electronic caller"},
	{Code: "F", Meaning: "Flash/light"},
	{Code: "M", Meaning: "Multiple lures"},
	{Code: "N", Meaning: "No lure used"},
	{Code: "U", Meaning: "Unknown lure"},
	{Code: "-", Meaning: "Not applicable"},
}

var accuracyCodes = []core.LookupEntry{
	{Code: "0", Meaning: "Accurate to the day"},
	{Code: "1", Meaning: "Accurate to within 1 day"},
	{Code: "2", Meaning: "Accurate to within 3 days"},
	{Code: "3", Meaning: "Accurate to within 1 week"},
	{Code: "4", Meaning: "Accurate to within 2 weeks"},
	{Code: "5", Meaning: "Accurate to within 6 weeks"},
	{Code: "6", Meaning: "Accurate to within 3 months"},
	{Code: "7", Meaning: "Accurate to within 6 months"},
	{Code: "8", Meaning: "Accurate to within 1 year"},
	{Code: "9", Meaning: "Not accurate to within 1 year"},
}

var coordinateAccuracyCodes = []core.LookupEntry{
	{Code: "0", Meaning: "Accurate to given coordinates"},
	{Code: "1", Meaning: "Within 5 km"},
	{Code: "2", Meaning: "Within 10 km"},
	{Code: "3", Meaning: "Within 20 km"},
	{Code: "4", Meaning: "Within 50 km"},
	{Code: "5", Meaning: "Within 100 km"},
	{Code: "6", Meaning: "Within 500 km"},
	{Code: "7", Meaning: "Within 1000 km"},
	{Code: "9", Meaning: "Somewhere in the country"},
}

// The 1979 layout reserved two characters for the same accuracy classes.
var coordinateAccuracyCodes1979 = []core.LookupEntry{
	{Code: "00", Meaning: "Accurate to given coordinates"},
	{Code: "01", Meaning: "Within 5 km"},
	{Code: "02", Meaning: "Within 10 km"},
	{Code: "03", Meaning: "Within 20 km"},
	{Code: "04", Meaning: "Within 50 km"},
	{Code: "05", Meaning: "Within 100 km"},
	{Code: "09", Meaning: "Somewhere in the country"},
}

var pullusAccuracyCodes = []core.LookupEntry{
	{Code: "0", Meaning: "Accurate to the day"},
	{Code: "1", Meaning: "Accurate to within 1 day"},
	{Code: "2", Meaning: "Accurate to within 2 days"},
	{Code: "3", Meaning: "Accurate to within 3 days"},
	{Code: "9", Meaning: "Not known"},
}

var conditionCodes = []core.LookupEntry{
	{Code: "0", Meaning: "Condition completely unknown"},
	{Code: "1", Meaning: "Dead, no information on how recently"},
	{Code: "2", Meaning: "Freshly dead"},
	{Code: "3", Meaning: "Not freshly dead"},
	{Code: "4", Meaning: "Found sick or wounded"},
	{Code: "5", Meaning: "Alive, taken into captivity"},
	{Code: "6", Meaning: "Alive, certainly released"},
	{Code: "7", Meaning: "Alive, released by a person other than a ringer"},
	{Code: "8", Meaning: "Alive, released by a ringer"},
	{Code: "9", Meaning: "Alive, fate unknown"},
}

var circumstancesCodes = []core.LookupEntry{
	{Code: "00", Meaning: "Circumstances unknown"},
	{Code: "01", Meaning: "Shot"},
	{Code: "02", Meaning: "Trapped or poisoned"},
	{Code: "10", Meaning: "Found, circumstances unknown"},
	{Code: "11", Meaning: "Caught by cat"},
	{Code: "12", Meaning: "Killed by traffic"},
	{Code: "20", Meaning: "Caught and released by ringer"},
	{Code: "21", Meaning: "Controlled at nest"},
	{Code: "28", Meaning: "Ring read in the field"},
	{Code: "29", Meaning: "Colour marks read in the field"},
}

// The 1966 circumstance list predates field reading of marks.
var circumstancesCodes1966 = circumstancesCodes[:8]

var presumedCodes = []core.LookupEntry{
	{Code: "0", Meaning: "Circumstances not presumed"},
	{Code: "1", Meaning: "Circumstances presumed"},
}

var fatCodes = []core.LookupEntry{
	{Code: "0", Meaning: "No fat"},
	{Code: "1", Meaning: "Trace of fat"},
	{Code: "2", Meaning: "Furculum partly filled"},
	{Code: "3", Meaning: "Furculum filled"},
	{Code: "4", Meaning: "Furculum bulging"},
	{Code: "5", Meaning: "Abdomen covered"},
	{Code: "6", Meaning: "Abdomen bulging"},
	{Code: "7", Meaning: "Fat over breast muscles"},
	{Code: "8", Meaning: "Fat over whole body"},
}

var muscleCodes = []core.LookupEntry{
	{Code: "0", Meaning: "Sternum sharp, muscle depressed"},
	{Code: "1", Meaning: "Sternum easily distinguished"},
	{Code: "2", Meaning: "Sternum distinguished, muscle rounded"},
	{Code: "3", Meaning: "Sternum barely distinguished, muscle bulging"},
}

var moultCodes = []core.LookupEntry{
	{Code: "B", Meaning: "Body moult only"},
	{Code: "J", Meaning: "Juvenile plumage"},
	{Code: "M", Meaning: "Active primary moult"},
	{Code: "P", Meaning: "Primary moult completed"},
	{Code: "X", Meaning: "Not moulting"},
	{Code: "U", Meaning: "Unknown"},
}

// codes lists the codes of a table, for FieldDefinition.ValidValues.
func codes(table []core.LookupEntry) []string {
	out := make([]string, len(table))
	for i, e := range table {
		out[i] = e.Code
	}
	return out
}
