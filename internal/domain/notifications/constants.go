package notifications

const (
	TypeSelfAssessmentSubmitted = "self_assessment_submitted"
	TypeSelfAssessmentApproved  = "self_assessment_approved"
)
