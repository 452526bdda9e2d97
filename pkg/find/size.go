package find

import "fmt"

// sizeUnit is the unit suffix accepted by -size.
type sizeUnit int

const (
	unitBlock sizeUnit = iota // 512-byte blocks (default)
	unitByte
	unitTwoByteWord
	unitKibiByte
	unitMebiByte
	unitGibiByte
)

func parseSizeUnit(s string) (sizeUnit, error) {
	switch s {
	case "", "b":
		return unitBlock, nil
	case "c":
		return unitByte, nil
	case "w":
		return unitTwoByteWord, nil
	case "k":
		return unitKibiByte, nil
	case "M":
		return unitMebiByte, nil
	case "G":
		return unitGibiByte, nil
	default:
		return unitBlock, fmt.Errorf("invalid suffix %s for -size; only allowed values are <nothing>, b, c, w, k, M or G", s)
	}
}

// byteSizeToUnitSize converts a byte count to the given unit, rounding up:
// a 1-byte file is 1k, a 1025-byte file is 2k.
func byteSizeToUnitSize(unit sizeUnit, byteSize uint64) uint64 {
	if byteSize == 0 {
		return 0
	}
	var shift uint
	switch unit {
	case unitByte:
		shift = 0
	case unitTwoByteWord:
		shift = 1
	case unitBlock:
		shift = 9
	case unitKibiByte:
		shift = 10
	case unitMebiByte:
		shift = 20
	case unitGibiByte:
		shift = 30
	}
	if shift == 0 {
		return byteSize
	}
	return ((byteSize - 1) >> shift) + 1
}

// SizeMatcher checks whether the entry's size, in the requested unit, is
// less than, equal to or more than N (-size).
type SizeMatcher struct {
	baseMatcher
	value ComparableValue
	unit  sizeUnit
}

// NewSizeMatcher builds a -size matcher from the parsed value and suffix.
func NewSizeMatcher(value ComparableValue, suffix string) (*SizeMatcher, error) {
	unit, err := parseSizeUnit(suffix)
	if err != nil {
		return nil, err
	}
	return &SizeMatcher{value: value, unit: unit}, nil
}

func (m *SizeMatcher) Matches(entry *Entry, io *MatcherIO) bool {
	info, err := entry.Metadata()
	if err != nil {
		reportEntryError(entry, io, "error getting file size for", err)
		return false
	}
	return m.value.Matches(byteSizeToUnitSize(m.unit, uint64(info.Size())))
}
