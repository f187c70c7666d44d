package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"travel-booking-service/internal/domain/entity"
	"travel-booking-service/pkg/apperror"
)

func newVisaApplication(userID string) *entity.VisaApplication {
	return &entity.VisaApplication{
		UserID:             userID,
		Email:              userID + "@example.com",
		FullName:           "Ana Lee",
		Nationality:        "id",
		DestinationCountry: "NL",
		VisaType:           "tourist",
		PassportNumber:     "A1234567",
		TravelDate:         "2025-09-01",
	}
}

type visaFixture struct {
	svc          *VisaApplicationService
	universities *UniversityService
	storage      *fakeStorage
	notes        *recordingEnqueuer
}

func newVisaFixture(withStorage bool) *visaFixture {
	store := newTestStore()
	log, m := testDeps()
	f := &visaFixture{
		universities: NewUniversityService(store, log, m),
		notes:        &recordingEnqueuer{},
	}
	if withStorage {
		f.storage = &fakeStorage{}
		f.svc = NewVisaApplicationService(store, f.storage, f.universities, f.notes, log, m)
	} else {
		f.svc = NewVisaApplicationService(store, nil, f.universities, f.notes, log, m)
	}
	return f
}

func TestVisaApplicationService_CreateStartsAsDraft(t *testing.T) {
	f := newVisaFixture(false)
	v := newVisaApplication("u1")
	v.Status = entity.VisaStatusApproved
	v.Documents = []entity.VisaDocument{{Name: "x", Key: "k", ContentType: "image/png", UploadedAt: "2025-01-01T00:00:00.000Z"}}

	created, err := f.svc.Create(context.Background(), v)
	require.NoError(t, err)
	assert.Equal(t, entity.VisaStatusDraft, created.Status)
	assert.Empty(t, created.Documents)
	assert.Equal(t, "ID", created.Nationality)
}

func TestVisaApplicationService_StudentVisaNeedsKnownUniversity(t *testing.T) {
	ctx := context.Background()
	f := newVisaFixture(false)

	v := newVisaApplication("u1")
	v.VisaType = "student"
	_, err := f.svc.Create(ctx, v)
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "universityId", apperror.DetailsOf(err)[0].Field)

	unknown := "nope"
	v.UniversityID = &unknown
	_, err = f.svc.Create(ctx, v)
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "exists", apperror.DetailsOf(err)[0].Code)

	uni, err := f.universities.Create(ctx, newUniversity("Delft", "NL"))
	require.NoError(t, err)
	v.UniversityID = &uni.ID
	_, err = f.svc.Create(ctx, v)
	assert.NoError(t, err)
}

func TestVisaApplicationService_UpdateDraftOnly(t *testing.T) {
	ctx := context.Background()
	f := newVisaFixture(true)

	created, err := f.svc.Create(ctx, newVisaApplication("u1"))
	require.NoError(t, err)

	updated, err := f.svc.Update(ctx, created.ID, entity.Record{
		"fullName": "Ana Maria Lee",
		"status":   entity.VisaStatusApproved,
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria Lee", updated.FullName)
	assert.Equal(t, entity.VisaStatusDraft, updated.Status)

	_, err = f.svc.Update(ctx, created.ID, entity.Record{"passportNumber": "x"})
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "passportNumber", apperror.DetailsOf(err)[0].Field)

	_, _, err = f.svc.RequestDocumentUpload(ctx, created.ID, "passport.pdf", "application/pdf")
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, created.ID)
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, created.ID, entity.Record{"fullName": "Someone Else"})
	assert.ErrorIs(t, err, apperror.ErrPrecondition)
}

func TestVisaApplicationService_DocumentUpload(t *testing.T) {
	ctx := context.Background()

	unconfigured := newVisaFixture(false)
	created, err := unconfigured.svc.Create(ctx, newVisaApplication("u1"))
	require.NoError(t, err)
	_, _, err = unconfigured.svc.RequestDocumentUpload(ctx, created.ID, "passport.pdf", "application/pdf")
	assert.ErrorIs(t, err, apperror.ErrPrecondition)

	f := newVisaFixture(true)
	created, err = f.svc.Create(ctx, newVisaApplication("u1"))
	require.NoError(t, err)

	upload, updated, err := f.svc.RequestDocumentUpload(ctx, created.ID, "../my passport.pdf", "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "PUT", upload.Method)
	assert.True(t, strings.HasPrefix(upload.Key, "visa-applications/"+created.ID+"/"), upload.Key)
	assert.True(t, strings.HasSuffix(upload.Key, "-my_passport.pdf"), upload.Key)

	require.Len(t, updated.Documents, 1)
	assert.Equal(t, upload.Key, updated.Documents[0].Key)
	assert.Equal(t, "application/pdf", updated.Documents[0].ContentType)

	_, _, err = f.svc.RequestDocumentUpload(ctx, "missing", "a.pdf", "application/pdf")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestVisaApplicationService_ReviewWorkflow(t *testing.T) {
	ctx := context.Background()
	f := newVisaFixture(true)

	created, err := f.svc.Create(ctx, newVisaApplication("u1"))
	require.NoError(t, err)

	_, err = f.svc.Submit(ctx, created.ID)
	require.ErrorIs(t, err, apperror.ErrPrecondition, "documents are required first")

	_, _, err = f.svc.RequestDocumentUpload(ctx, created.ID, "passport.pdf", "application/pdf")
	require.NoError(t, err)

	submitted, err := f.svc.Submit(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.VisaStatusSubmitted, submitted.Status)
	assert.NotNil(t, submitted.SubmittedAt)

	_, err = f.svc.Approve(ctx, created.ID, "")
	assert.ErrorIs(t, err, apperror.ErrPrecondition, "review must start first")

	_, err = f.svc.StartReview(ctx, created.ID)
	require.NoError(t, err)

	_, err = f.svc.Reject(ctx, created.ID, "")
	assert.ErrorIs(t, err, apperror.ErrPrecondition)

	approved, err := f.svc.Approve(ctx, created.ID, "Enjoy your stay")
	require.NoError(t, err)
	assert.Equal(t, entity.VisaStatusApproved, approved.Status)
	require.NotNil(t, approved.DecisionNote)
	assert.Equal(t, "Enjoy your stay", *approved.DecisionNote)

	_, err = f.svc.Withdraw(ctx, created.ID)
	assert.ErrorIs(t, err, apperror.ErrPrecondition)

	kinds := f.notes.kinds()
	require.Len(t, kinds, 3)
	for _, kind := range kinds {
		assert.Equal(t, entity.NotificationVisaStatusChanged, kind)
	}
	assert.Equal(t, entity.VisaStatusApproved, f.notes.items[2].data["status"])
	assert.Equal(t, "Enjoy your stay", f.notes.items[2].data["note"])
}

func TestVisaApplicationService_Listings(t *testing.T) {
	tickingClock(t, testStart)
	ctx := context.Background()
	f := newVisaFixture(true)

	for _, user := range []string{"u1", "u1", "u2"} {
		_, err := f.svc.Create(ctx, newVisaApplication(user))
		require.NoError(t, err)
	}
	mine, err := f.svc.ListByUser(ctx, "u1", PageRequest{})
	require.NoError(t, err)
	assert.Len(t, mine.Data, 2)

	drafts, err := f.svc.ListByStatus(ctx, entity.VisaStatusDraft, PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, drafts.Data, 2)
	assert.True(t, drafts.HasMore)
}

func TestDocumentKey(t *testing.T) {
	key := DocumentKey("app1", "")
	assert.True(t, strings.HasPrefix(key, "visa-applications/app1/"))
	assert.True(t, strings.HasSuffix(key, "-document"), key)
}
