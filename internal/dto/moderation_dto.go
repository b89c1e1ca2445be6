package dto

type CreateReportRequest struct {
	Reason      string `json:"reason"`
	Description string `json:"description"`
}

type ReviewReportRequest struct {
	Status    string `json:"status"`
	AdminNote string `json:"admin_note"`
}
