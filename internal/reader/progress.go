package reader

import "ripfeed/internal/jobstate"

// scanProgress is the fraction of the job covered once chapter is reached.
func scanProgress(chapter, chapterEnd int) float64 {
	if chapterEnd <= 0 {
		return 0
	}
	p := float64(chapter) / float64(chapterEnd)
	switch {
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}

func (r *Reader) reportProgress(chapter int) {
	r.job.SetState(jobstate.NewWorking(scanProgress(chapter, r.job.ChapterEnd)))
}
