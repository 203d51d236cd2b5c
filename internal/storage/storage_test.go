package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"interview-voice-service/internal/apperr"
)

func newTestRepo(t *testing.T) (*DB, *Repository) {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db, NewRepository(db)
}

func seedInterview(t *testing.T, repo *Repository, questions ...string) (User, Interview, []InterviewQuestion) {
	t.Helper()
	ctx := context.Background()

	user := repo.CreateUser(ctx, NewUser{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	require.NoError(t, user.Err())

	iv := repo.CreateInterview(ctx, NewInterview{
		Role:              "Backend Engineer",
		Level:             "Senior",
		TechStack:         []string{"Go", "PostgreSQL"},
		NumberOfQuestions: len(questions),
		CompanyName:       "Acme",
		JobDescription:    "Build services",
		InterviewFocus:    []string{"Technical"},
		UserID:            user.Value().ID,
	})
	require.NoError(t, iv.Err())

	var created []InterviewQuestion
	for i, q := range questions {
		res := repo.CreateInterviewQuestion(ctx, InterviewQuestion{
			InterviewID:   iv.Value().ID,
			Question:      q,
			QuestionOrder: i + 1,
		})
		require.NoError(t, res.Err())
		created = append(created, res.Value())
	}
	return user.Value(), iv.Value(), created
}

func TestCamelCase(t *testing.T) {
	require.Equal(t, "questionOrder", camelCase("question_order"))
	require.Equal(t, "id", camelCase("id"))
	require.Equal(t, "interviewFocus", camelCase("interview_focus"))
	require.Equal(t, "companyWebsiteUrl", camelCase("company_website_url"))
}

func TestQueryNormalizesColumnNames(t *testing.T) {
	db, repo := newTestRepo(t)
	_, iv, _ := seedInterview(t, repo, "Tell me about yourself")

	rows := db.Query(context.Background(), `SELECT question_order, interview_id FROM interview_questions`)
	require.NoError(t, rows.Err())
	require.Len(t, rows.Value(), 1)
	require.Equal(t, int64(1), rows.Value()[0].Int64("questionOrder"))
	require.Equal(t, iv.ID, rows.Value()[0].Int64("interviewId"))
}

func TestGetInterviewQuestionsOrdered(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()
	_, iv, _ := seedInterview(t, repo)

	// вставляем в обратном порядке
	for _, q := range []InterviewQuestion{
		{InterviewID: iv.ID, Question: "third", QuestionOrder: 3},
		{InterviewID: iv.ID, Question: "first", QuestionOrder: 1},
		{InterviewID: iv.ID, Question: "second", QuestionOrder: 2},
	} {
		require.NoError(t, repo.CreateInterviewQuestion(ctx, q).Err())
	}

	qs := repo.GetInterviewQuestions(ctx, iv.ID)
	require.NoError(t, qs.Err())
	require.Len(t, qs.Value(), 3)
	for i, q := range qs.Value() {
		require.Equal(t, i+1, q.QuestionOrder)
	}
	require.Equal(t, "first", qs.Value()[0].Question)
}

func TestGetInterviewByID(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()
	_, iv, _ := seedInterview(t, repo, "Q1", "Q2")

	got := repo.GetInterviewByID(ctx, iv.ID)
	require.NoError(t, got.Err())
	require.Equal(t, "Backend Engineer", got.Value().Role)
	require.Equal(t, []string{"Go", "PostgreSQL"}, got.Value().TechStack)
	require.Equal(t, []string{"Q1", "Q2"}, got.Value().InterviewQuestions)

	missing := repo.GetInterviewByID(ctx, 9999)
	require.ErrorIs(t, missing.Err(), apperr.ErrInterviewNotFound)
}

func TestListInterviews(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()
	user, first, _ := seedInterview(t, repo, "Q1")

	second := repo.CreateInterview(ctx, NewInterview{
		Role: "SRE", Level: "Mid", NumberOfQuestions: 1,
		CompanyName: "Acme", JobDescription: "Keep it up", UserID: user.ID,
	})
	require.NoError(t, second.Err())

	list := repo.ListInterviews(ctx, user.ID)
	require.NoError(t, list.Err())
	require.Len(t, list.Value(), 2)
	require.Equal(t, second.Value().ID, list.Value()[0].ID)
	require.Equal(t, first.ID, list.Value()[1].ID)

	empty := repo.ListInterviews(ctx, 4242)
	require.NoError(t, empty.Err())
	require.Empty(t, empty.Value())
}

func TestUpdateAnswerAndFeedback(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()
	_, iv, qs := seedInterview(t, repo, "Why Go?")

	require.NoError(t, repo.UpdateQuestionAnswer(ctx, qs[0].ID, "Because of goroutines").Err())
	require.NoError(t, repo.UpdateQuestionFeedback(ctx, qs[0].ID, "- Mention channels").Err())

	got := repo.GetInterviewQuestions(ctx, iv.ID).Value()[0]
	require.Equal(t, "Because of goroutines", got.Answer)
	require.Equal(t, "- Mention channels", got.Feedback)

	missing := repo.UpdateQuestionAnswer(ctx, 777, "x")
	require.ErrorIs(t, missing.Err(), apperr.ErrQuestionNotFound)
}

func TestGetFeedbackContext(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()
	_, _, qs := seedInterview(t, repo, "Describe a hard bug")

	fc := repo.GetFeedbackContext(ctx, qs[0].ID)
	require.NoError(t, fc.Err())
	require.Equal(t, "Senior", fc.Value().Level)
	require.Equal(t, "Acme", fc.Value().CompanyName)
	require.Equal(t, "Build services", fc.Value().JobDescription)
	require.Equal(t, []string{"Technical"}, fc.Value().InterviewFocus)
	require.Equal(t, "Describe a hard bug", fc.Value().Question)
}

func TestGetUserByID(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()
	user, _, _ := seedInterview(t, repo)

	got := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, got.Err())
	require.Equal(t, "Ada", got.Value().FirstName)

	require.ErrorIs(t, repo.GetUserByID(ctx, 31337).Err(), apperr.ErrUserNotFound)
}

func TestConstraintErrorsAreClassified(t *testing.T) {
	_, repo := newTestRepo(t)
	ctx := context.Background()
	user, _, _ := seedInterview(t, repo)

	t.Run("duplicate key", func(t *testing.T) {
		res := repo.CreateUser(ctx, NewUser{FirstName: "Ada", LastName: "Again", Email: user.Email})
		require.ErrorIs(t, res.Err(), ErrDuplicateKey)
		require.ErrorIs(t, res.Err(), ErrDatabase)

		var dbErr *DBError
		require.True(t, errors.As(res.Err(), &dbErr))
		require.Equal(t, "users", dbErr.Table)
		require.Equal(t, "email", dbErr.Column)
		require.Equal(t, 409, dbErr.StatusCode())
	})

	t.Run("not null", func(t *testing.T) {
		res := repo.CreateUser(ctx, NewUser{FirstName: "", LastName: "X", Email: "x@example.com"})
		require.ErrorIs(t, res.Err(), ErrNotNull)
		require.False(t, errors.Is(res.Err(), ErrForeignKey))

		var dbErr *DBError
		require.True(t, errors.As(res.Err(), &dbErr))
		require.Equal(t, "first_name", dbErr.Column)
		require.Equal(t, "DATABASE_NOT_NULL_VIOLATION", dbErr.ErrorCode())
	})

	t.Run("foreign key", func(t *testing.T) {
		res := repo.CreateInterviewQuestion(ctx, InterviewQuestion{InterviewID: 555, Question: "orphan", QuestionOrder: 1})
		require.ErrorIs(t, res.Err(), ErrForeignKey)
		require.ErrorIs(t, res.Err(), ErrDatabase)
	})

	t.Run("generic query error", func(t *testing.T) {
		db, _ := newTestRepo(t)
		res := db.Query(ctx, `SELECT nope FROM missing_table`)
		require.ErrorIs(t, res.Err(), ErrDatabase)
		var dbErr *DBError
		require.True(t, errors.As(res.Err(), &dbErr))
		require.Equal(t, KindQuery, dbErr.Kind)
		require.Equal(t, 500, dbErr.StatusCode())
	})
}

func TestConstraintTarget(t *testing.T) {
	table, column := constraintTarget("UNIQUE constraint failed: users.email")
	require.Equal(t, "users", table)
	require.Equal(t, "email", column)

	table, column = constraintTarget("UNIQUE constraint failed: a.b, a.c")
	require.Equal(t, "a", table)
	require.Equal(t, "b", column)

	table, column = constraintTarget("FOREIGN KEY constraint failed")
	require.Empty(t, table)
	require.Empty(t, column)
}

func TestArchiveRoundTrip(t *testing.T) {
	archive := NewArchive(filepath.Join(t.TempDir(), "results"))

	ids, err := archive.ListResults()
	require.NoError(t, err)
	require.Empty(t, ids)

	res := &InterviewResult{
		SessionID:   "session_1_abc",
		InterviewID: 3,
		UserID:      1,
		StartedAt:   time.Now().Add(-time.Minute).UTC(),
		EndedAt:     time.Now().UTC(),
		Answers:     []QA{{QuestionID: 10, Question: "Q", Answer: "A"}},
	}
	path, err := archive.SaveResult(res)
	require.NoError(t, err)
	require.FileExists(t, path)

	loaded, err := archive.LoadResult("session_1_abc")
	require.NoError(t, err)
	require.Equal(t, res.Answers, loaded.Answers)

	ids, err = archive.ListResults()
	require.NoError(t, err)
	require.Equal(t, []string{"session_1_abc"}, ids)
}

func TestOpenDirectoryFails(t *testing.T) {
	db, err := Open(t.TempDir())
	require.Nil(t, db)
	require.ErrorContains(t, err, "ошибка подключения к базе данных")
}
