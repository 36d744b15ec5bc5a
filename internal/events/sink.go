package events

import (
	"log"

	"go-jobpilot-automation/internal/models"
)

// Sink is the caller-owned callback set the orchestrator and scrapers
// report into. Every field is optional and every invocation is
// fire-and-forget: a nil sink, a nil callback and a panicking callback are
// all safe and never abort processing.
type Sink struct {
	OnLog                 func(level, message string)
	OnJobFound            func(job models.JobListing)
	OnApplicationStart    func(job models.JobListing)
	OnApplicationComplete func(job models.JobListing, success bool)
	OnScreeningQuestion   func(question models.ScreeningQuestion, answer string)
	OnError               func(err error, job *models.JobListing)
	OnQueueProgress       func(current, total int)
	OnSessionComplete     func(applied, failed int)
}

func guard() {
	if r := recover(); r != nil {
		log.Printf("⚠️ Event callback panicked: %v", r)
	}
}

func (s *Sink) Log(level, message string) {
	if s == nil || s.OnLog == nil {
		return
	}
	defer guard()
	s.OnLog(level, message)
}

func (s *Sink) JobFound(job models.JobListing) {
	if s == nil || s.OnJobFound == nil {
		return
	}
	defer guard()
	s.OnJobFound(job)
}

func (s *Sink) ApplicationStart(job models.JobListing) {
	if s == nil || s.OnApplicationStart == nil {
		return
	}
	defer guard()
	s.OnApplicationStart(job)
}

func (s *Sink) ApplicationComplete(job models.JobListing, success bool) {
	if s == nil || s.OnApplicationComplete == nil {
		return
	}
	defer guard()
	s.OnApplicationComplete(job, success)
}

func (s *Sink) ScreeningQuestion(question models.ScreeningQuestion, answer string) {
	if s == nil || s.OnScreeningQuestion == nil {
		return
	}
	defer guard()
	s.OnScreeningQuestion(question, answer)
}

func (s *Sink) Error(err error, job *models.JobListing) {
	if s == nil || s.OnError == nil {
		return
	}
	defer guard()
	s.OnError(err, job)
}

func (s *Sink) QueueProgress(current, total int) {
	if s == nil || s.OnQueueProgress == nil {
		return
	}
	defer guard()
	s.OnQueueProgress(current, total)
}

func (s *Sink) SessionComplete(applied, failed int) {
	if s == nil || s.OnSessionComplete == nil {
		return
	}
	defer guard()
	s.OnSessionComplete(applied, failed)
}

// Combine fans one sink out to several. Nil entries are skipped.
func Combine(sinks ...*Sink) *Sink {
	return &Sink{
		OnLog: func(level, message string) {
			for _, s := range sinks {
				s.Log(level, message)
			}
		},
		OnJobFound: func(job models.JobListing) {
			for _, s := range sinks {
				s.JobFound(job)
			}
		},
		OnApplicationStart: func(job models.JobListing) {
			for _, s := range sinks {
				s.ApplicationStart(job)
			}
		},
		OnApplicationComplete: func(job models.JobListing, success bool) {
			for _, s := range sinks {
				s.ApplicationComplete(job, success)
			}
		},
		OnScreeningQuestion: func(question models.ScreeningQuestion, answer string) {
			for _, s := range sinks {
				s.ScreeningQuestion(question, answer)
			}
		},
		OnError: func(err error, job *models.JobListing) {
			for _, s := range sinks {
				s.Error(err, job)
			}
		},
		OnQueueProgress: func(current, total int) {
			for _, s := range sinks {
				s.QueueProgress(current, total)
			}
		},
		OnSessionComplete: func(applied, failed int) {
			for _, s := range sinks {
				s.SessionComplete(applied, failed)
			}
		},
	}
}
