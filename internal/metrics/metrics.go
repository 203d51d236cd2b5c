package metrics

import (
	"sync"
	"time"
)

type Metrics struct {
	mu                    sync.RWMutex
	SessionsStarted       int64
	SessionsCompleted     int64
	SessionsExpired       int64
	QuestionsAsked        int64
	AnswersSubmitted      int64
	TranscriptionFailures int64
	SynthesisFailures     int64
	FeedbackGenerated     int64
	FeedbackFailed        int64
	FeedbackDropped       int64
	APICallsTotal         int64
	APICallsSuccessful    int64
	LastUpdateTime        time.Time
}

func NewMetrics() *Metrics {
	return &Metrics{
		LastUpdateTime: time.Now(),
	}
}

func (m *Metrics) add(counter *int64, n int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	*counter += n
	m.LastUpdateTime = time.Now()
}

func (m *Metrics) IncrementSessionsStarted()       { m.add(&m.SessionsStarted, 1) }
func (m *Metrics) IncrementSessionsCompleted()     { m.add(&m.SessionsCompleted, 1) }
func (m *Metrics) IncrementQuestionsAsked()        { m.add(&m.QuestionsAsked, 1) }
func (m *Metrics) IncrementAnswersSubmitted()      { m.add(&m.AnswersSubmitted, 1) }
func (m *Metrics) IncrementTranscriptionFailures() { m.add(&m.TranscriptionFailures, 1) }
func (m *Metrics) IncrementSynthesisFailures()     { m.add(&m.SynthesisFailures, 1) }
func (m *Metrics) IncrementFeedbackGenerated()     { m.add(&m.FeedbackGenerated, 1) }
func (m *Metrics) IncrementFeedbackFailed()        { m.add(&m.FeedbackFailed, 1) }
func (m *Metrics) IncrementFeedbackDropped()       { m.add(&m.FeedbackDropped, 1) }

// AddSessionsExpired учитывает сессии, удаленные по таймауту
func (m *Metrics) AddSessionsExpired(n int) {
	if n > 0 {
		m.add(&m.SessionsExpired, int64(n))
	}
}

func (m *Metrics) IncrementAPICall(success bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.APICallsTotal++
	if success {
		m.APICallsSuccessful++
	}
	m.LastUpdateTime = time.Now()
}

// Snapshot - копия счетчиков без мьютекса, безопасна для сериализации
type Snapshot struct {
	SessionsStarted       int64     `json:"sessionsStarted"`
	SessionsCompleted     int64     `json:"sessionsCompleted"`
	SessionsExpired       int64     `json:"sessionsExpired"`
	QuestionsAsked        int64     `json:"questionsAsked"`
	AnswersSubmitted      int64     `json:"answersSubmitted"`
	TranscriptionFailures int64     `json:"transcriptionFailures"`
	SynthesisFailures     int64     `json:"synthesisFailures"`
	FeedbackGenerated     int64     `json:"feedbackGenerated"`
	FeedbackFailed        int64     `json:"feedbackFailed"`
	FeedbackDropped       int64     `json:"feedbackDropped"`
	APICallsTotal         int64     `json:"apiCallsTotal"`
	APICallsSuccessful    int64     `json:"apiCallsSuccessful"`
	LastUpdateTime        time.Time `json:"lastUpdateTime"`
}

func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		SessionsStarted:       m.SessionsStarted,
		SessionsCompleted:     m.SessionsCompleted,
		SessionsExpired:       m.SessionsExpired,
		QuestionsAsked:        m.QuestionsAsked,
		AnswersSubmitted:      m.AnswersSubmitted,
		TranscriptionFailures: m.TranscriptionFailures,
		SynthesisFailures:     m.SynthesisFailures,
		FeedbackGenerated:     m.FeedbackGenerated,
		FeedbackFailed:        m.FeedbackFailed,
		FeedbackDropped:       m.FeedbackDropped,
		APICallsTotal:         m.APICallsTotal,
		APICallsSuccessful:    m.APICallsSuccessful,
		LastUpdateTime:        m.LastUpdateTime,
	}
}
