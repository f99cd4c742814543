package reader

import (
	"fmt"

	"ripfeed/internal/title"
)

// ChapterRange is an inclusive range of on-media chapters.
type ChapterRange struct {
	Start int
	End   int
}

// ResolveRange maps a logical chapter range to on-media chapters. Merged
// chapters share an on-media index, so both ends are looked up through the
// chapter list instead of being used directly. A start of 1 keeps the
// title's natural first chapter.
func ResolveRange(chapters []title.Chapter, start, end int) (ChapterRange, error) {
	if len(chapters) == 0 {
		return ChapterRange{}, fmt.Errorf("title has no chapters")
	}
	if start < 1 || start > len(chapters) {
		return ChapterRange{}, fmt.Errorf("chapter start %d out of range 1..%d", start, len(chapters))
	}
	if end < start || end > len(chapters) {
		return ChapterRange{}, fmt.Errorf("chapter end %d out of range %d..%d", end, start, len(chapters))
	}

	r := ChapterRange{Start: start, End: chapters[end-1].Index}
	if start > 1 {
		r.Start = chapters[start-1].Index
	}
	return r, nil
}
