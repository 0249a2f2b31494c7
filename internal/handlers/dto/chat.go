package dto

type CreateChatRequest struct {
	Type         string   `json:"type" binding:"required,oneof=direct group"`
	Name         string   `json:"name"`
	AdminID      string   `json:"admin_id"`
	GroupIcon    string   `json:"group_icon"`
	Participants []string `json:"participants" binding:"required,min=2"`
}

type UpdateChatRequest struct {
	Name      string `json:"name"`
	GroupIcon string `json:"group_icon"`
	AdminID   string `json:"admin_id"`
}

type ParticipantsRequest struct {
	ParticipantIDs []string `json:"participant_ids" binding:"required,min=1"`
}
