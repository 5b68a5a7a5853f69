package payments

import (
	"testing"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/app/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestBuildPaymentFilter(t *testing.T) {
	cases := []struct {
		name  string
		query contracts.PaymentQuery
		want  bson.M
	}{
		{
			name:  "admin scope",
			query: contracts.PaymentQuery{},
			want:  bson.M{},
		},
		{
			name:  "participant and statuses",
			query: contracts.PaymentQuery{ParticipantID: "pat-1", Statuses: []models.PaymentStatus{models.PaymentStatusRefunded}},
			want: bson.M{
				"$or": []bson.M{
					{"patientId": "pat-1"},
					{"doctorId": "pat-1"},
				},
				"status": bson.M{"$in": []models.PaymentStatus{models.PaymentStatusRefunded}},
			},
		},
		{
			name:  "appointment scope",
			query: contracts.PaymentQuery{AppointmentID: "appt-1", Statuses: []models.PaymentStatus{models.PaymentStatusCompleted}},
			want: bson.M{
				"appointmentId": "appt-1",
				"status":        bson.M{"$in": []models.PaymentStatus{models.PaymentStatusCompleted}},
			},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, buildPaymentFilter(tc.query))
		})
	}
}

func TestBuildSummaryPipeline(t *testing.T) {
	pipeline := buildSummaryPipeline("doc-1")
	require.Len(t, pipeline, 3)
	assert.Equal(t, "$match", pipeline[0][0].Key)
	assert.Equal(t, "$group", pipeline[1][0].Key)
	group := pipeline[1][0].Value.(bson.M)
	assert.Equal(t, "$status", group["_id"])
	assert.Equal(t, bson.M{"$sum": "$amount"}, group["amount"])
}
