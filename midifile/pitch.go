package midifile

// The tables cover the 88 piano keys, A 0 (0x15) to C 8 (0x6C).
const (
	LowestKey  uint8 = 0x15
	HighestKey uint8 = 0x6C
)

var noteNames = [88]string{
	"A 0", "A# 0", "B 0", "C 1", "C# 1", "D 1", "D# 1", "E 1", "F 1", "F# 1", "G 1", "G# 1",
	"A 1", "A# 1", "B 1", "C 2", "C# 2", "D 2", "D# 2", "E 2", "F 2", "F# 2", "G 2", "G# 2",
	"A 2", "A# 2", "B 2", "C 3", "C# 3", "D 3", "D# 3", "E 3", "F 3", "F# 3", "G 3", "G# 3",
	"A 3", "A# 3", "B 3", "C 4", "C# 4", "D 4", "D# 4", "E 4", "F 4", "F# 4", "G 4", "G# 4",
	"A 4", "A# 4", "B 4", "C 5", "C# 5", "D 5", "D# 5", "E 5", "F 5", "F# 5", "G 5", "G# 5",
	"A 5", "A# 5", "B 5", "C 6", "C# 6", "D 6", "D# 6", "E 6", "F 6", "F# 6", "G 6", "G# 6",
	"A 6", "A# 6", "B 6", "C 7", "C# 7", "D 7", "D# 7", "E 7", "F 7", "F# 7", "G 7", "G# 7",
	"A 7", "A# 7", "B 7", "C 8",
}

// noteFrequencies are rounded to the nearest Hz.
var noteFrequencies = [88]int{
	27, 29, 31, 33, 35, 37, 39, 41, 44, 46, 49, 52,
	55, 58, 62, 65, 69, 73, 78, 82, 87, 93, 98, 104,
	110, 117, 123, 131, 139, 147, 156, 165, 175, 185, 196, 208,
	220, 233, 247, 262, 277, 294, 311, 330, 349, 370, 392, 415,
	440, 466, 494, 523, 554, 587, 622, 659, 698, 740, 784, 831,
	880, 932, 988, 1047, 1109, 1175, 1245, 1319, 1397, 1480, 1568, 1661,
	1760, 1865, 1976, 2093, 2217, 2349, 2489, 2637, 2794, 2960, 3136, 3322,
	3520, 3729, 3951, 4186,
}

// NoteName returns the pitch name with its octave, e.g. "C# 4", or "" outside the keyboard range.
func NoteName(key uint8) string {
	if key < LowestKey || key > HighestKey {
		return ""
	}
	return noteNames[key-LowestKey]
}

// NoteFrequency returns the pitch frequency in Hz, or 0 outside the keyboard range.
func NoteFrequency(key uint8) int {
	if key < LowestKey || key > HighestKey {
		return 0
	}
	return noteFrequencies[key-LowestKey]
}
