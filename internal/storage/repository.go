package storage

import (
	"context"
	"encoding/json"
	"strings"

	"interview-voice-service/internal/apperr"
	"interview-voice-service/internal/result"
)

// Repository - операции над пользователями, интервью и вопросами
type Repository struct {
	db *DB
}

// NewRepository создает репозиторий поверх открытой базы
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// NewUser - данные для создания пользователя
type NewUser struct {
	FirstName string
	LastName  string
	Email     string
}

// CreateUser добавляет пользователя
func (r *Repository) CreateUser(ctx context.Context, u NewUser) result.Result[User] {
	text := `
		INSERT INTO users (first_name, last_name, email)
		VALUES (?, ?, ?)
		RETURNING id, first_name, last_name, email, created_at
	`
	rows := r.db.Query(ctx, text, nullIfEmpty(u.FirstName), nullIfEmpty(u.LastName), nullIfEmpty(u.Email))
	return result.Then(rows, func(rows []Row) result.Result[User] {
		return result.Ok(userFromRow(rows[0]))
	})
}

// GetUserByID возвращает пользователя или ErrUserNotFound
func (r *Repository) GetUserByID(ctx context.Context, id int64) result.Result[User] {
	text := `
		SELECT id, first_name, last_name, email, created_at
		FROM users
		WHERE id = ?
	`
	return result.Then(r.db.Query(ctx, text, id), func(rows []Row) result.Result[User] {
		if len(rows) == 0 {
			return result.Err[User](apperr.ErrUserNotFound)
		}
		return result.Ok(userFromRow(rows[0]))
	})
}

// NewInterview - данные для создания интервью
type NewInterview struct {
	Role              string   `json:"role"`
	Level             string   `json:"level"`
	TechStack         []string `json:"techStack"`
	NumberOfQuestions int      `json:"numberOfQuestions"`
	CompanyName       string   `json:"companyName"`
	JobDescription    string   `json:"jobDescription"`
	CompanyWebsite    string   `json:"companyWebsite"`
	InterviewFocus    []string `json:"interviewFocus"`
	UserID            int64    `json:"userId"`
}

const interviewColumns = `id, role, level, tech_stack, number_of_questions, company_name,
		job_description, company_website, interview_focus, user_id, created_at`

// CreateInterview сохраняет интервью без вопросов
func (r *Repository) CreateInterview(ctx context.Context, in NewInterview) result.Result[Interview] {
	text := `
		INSERT INTO interviews (role, level, tech_stack, number_of_questions, company_name,
			job_description, company_website, interview_focus, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + interviewColumns

	rows := r.db.Query(ctx, text,
		nullIfEmpty(in.Role),
		nullIfEmpty(in.Level),
		jsonList(in.TechStack),
		in.NumberOfQuestions,
		nullIfEmpty(in.CompanyName),
		nullIfEmpty(in.JobDescription),
		nullIfEmpty(in.CompanyWebsite),
		jsonList(in.InterviewFocus),
		in.UserID,
	)
	return result.Then(rows, func(rows []Row) result.Result[Interview] {
		return result.Ok(interviewFromRow(rows[0]))
	})
}

// GetInterviewByID возвращает интервью вместе с текстами вопросов
func (r *Repository) GetInterviewByID(ctx context.Context, id int64) result.Result[Interview] {
	text := `SELECT ` + interviewColumns + ` FROM interviews WHERE id = ?`

	interview := result.Then(r.db.Query(ctx, text, id), func(rows []Row) result.Result[Interview] {
		if len(rows) == 0 {
			return result.Err[Interview](apperr.ErrInterviewNotFound)
		}
		return result.Ok(interviewFromRow(rows[0]))
	})

	return result.Then(interview, func(iv Interview) result.Result[Interview] {
		questions := r.GetInterviewQuestions(ctx, id)
		if questions.IsOk() {
			for _, q := range questions.Value() {
				iv.InterviewQuestions = append(iv.InterviewQuestions, q.Question)
			}
		}
		return result.Ok(iv)
	})
}

// ListInterviews возвращает интервью пользователя, новые первыми
func (r *Repository) ListInterviews(ctx context.Context, userID int64) result.Result[[]Interview] {
	text := `SELECT ` + interviewColumns + `
		FROM interviews
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`

	return result.Map(r.db.Query(ctx, text, userID), func(rows []Row) []Interview {
		out := make([]Interview, 0, len(rows))
		for _, row := range rows {
			out = append(out, interviewFromRow(row))
		}
		return out
	})
}

// CreateInterviewQuestion добавляет вопрос к интервью
func (r *Repository) CreateInterviewQuestion(ctx context.Context, q InterviewQuestion) result.Result[InterviewQuestion] {
	text := `
		INSERT INTO interview_questions (interview_id, question, answer, question_order)
		VALUES (?, ?, ?, ?)
		RETURNING id, interview_id, question, answer, feedback, question_order
	`
	rows := r.db.Query(ctx, text, q.InterviewID, nullIfEmpty(q.Question), q.Answer, q.QuestionOrder)
	return result.Then(rows, func(rows []Row) result.Result[InterviewQuestion] {
		return result.Ok(questionFromRow(rows[0]))
	})
}

// GetInterviewQuestions возвращает вопросы в порядке показа
func (r *Repository) GetInterviewQuestions(ctx context.Context, interviewID int64) result.Result[[]InterviewQuestion] {
	text := `
		SELECT id, interview_id, question, answer, feedback, question_order
		FROM interview_questions
		WHERE interview_id = ?
		ORDER BY question_order ASC, id ASC
	`
	return result.Map(r.db.Query(ctx, text, interviewID), func(rows []Row) []InterviewQuestion {
		out := make([]InterviewQuestion, 0, len(rows))
		for _, row := range rows {
			out = append(out, questionFromRow(row))
		}
		return out
	})
}

// UpdateQuestionAnswer записывает расшифровку ответа
func (r *Repository) UpdateQuestionAnswer(ctx context.Context, questionID int64, answer string) result.Result[struct{}] {
	text := `
		UPDATE interview_questions
		SET answer = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	return r.updateOne(ctx, text, answer, questionID)
}

// UpdateQuestionFeedback записывает обратную связь
func (r *Repository) UpdateQuestionFeedback(ctx context.Context, questionID int64, feedback string) result.Result[struct{}] {
	text := `
		UPDATE interview_questions
		SET feedback = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`
	return r.updateOne(ctx, text, feedback, questionID)
}

func (r *Repository) updateOne(ctx context.Context, text string, value string, questionID int64) result.Result[struct{}] {
	return result.Then(r.db.Exec(ctx, text, value, questionID), func(res ExecResult) result.Result[struct{}] {
		if res.RowsAffected == 0 {
			return result.Err[struct{}](apperr.ErrQuestionNotFound)
		}
		return result.Ok(struct{}{})
	})
}

// GetFeedbackContext собирает метаданные интервью по id вопроса
func (r *Repository) GetFeedbackContext(ctx context.Context, questionID int64) result.Result[FeedbackContext] {
	text := `
		SELECT i.role, i.level, i.company_name, i.job_description, i.interview_focus, q.question
		FROM interviews i
		JOIN interview_questions q ON q.interview_id = i.id
		WHERE q.id = ?
	`
	return result.Then(r.db.Query(ctx, text, questionID), func(rows []Row) result.Result[FeedbackContext] {
		if len(rows) == 0 {
			return result.Err[FeedbackContext](apperr.ErrQuestionNotFound)
		}
		row := rows[0]
		return result.Ok(FeedbackContext{
			Role:           row.String("role"),
			Level:          row.String("level"),
			CompanyName:    row.String("companyName"),
			JobDescription: row.String("jobDescription"),
			InterviewFocus: row.Strings("interviewFocus"),
			Question:       row.String("question"),
		})
	})
}

func userFromRow(row Row) User {
	return User{
		ID:        row.Int64("id"),
		FirstName: row.String("firstName"),
		LastName:  row.String("lastName"),
		Email:     row.String("email"),
		CreatedAt: row.Time("createdAt"),
	}
}

func interviewFromRow(row Row) Interview {
	return Interview{
		ID:                row.Int64("id"),
		Role:              row.String("role"),
		Level:             row.String("level"),
		TechStack:         row.Strings("techStack"),
		NumberOfQuestions: int(row.Int64("numberOfQuestions")),
		CompanyName:       row.String("companyName"),
		JobDescription:    row.String("jobDescription"),
		CompanyWebsite:    row.String("companyWebsite"),
		InterviewFocus:    row.Strings("interviewFocus"),
		UserID:            row.Int64("userId"),
		CreatedAt:         row.Time("createdAt"),
	}
}

func questionFromRow(row Row) InterviewQuestion {
	return InterviewQuestion{
		ID:            row.Int64("id"),
		InterviewID:   row.Int64("interviewId"),
		Question:      row.String("question"),
		Answer:        row.String("answer"),
		Feedback:      row.String("feedback"),
		QuestionOrder: int(row.Int64("questionOrder")),
	}
}

// nullIfEmpty отдает NULL вместо пустой строки, чтобы NOT NULL срабатывал в базе
func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func jsonList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(data)
}
