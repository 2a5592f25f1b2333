package dto

// CreateFacultyRequest registers a teaching staff member.
type CreateFacultyRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Subject string `json:"subject" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email"`
}

// UpdateFacultyRequest modifies a faculty record. Empty fields are kept.
type UpdateFacultyRequest struct {
	Name    string `json:"name" validate:"omitempty,min=2,max=120"`
	Subject string `json:"subject" validate:"omitempty,min=2,max=120"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// CreateRoomRequest registers a bookable room.
type CreateRoomRequest struct {
	Name     string `json:"name" validate:"required,min=1,max=60"`
	Capacity int    `json:"capacity" validate:"required,min=1,max=1000"`
	Category string `json:"category" validate:"required,oneof=classroom lab auditorium"`
}

// CreateSubjectRequest registers an academic subject.
type CreateSubjectRequest struct {
	Code    string `json:"code" validate:"required,min=2,max=20"`
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Credits int    `json:"credits" validate:"required,min=1,max=10"`
}

// CreateLeaveRequest files a leave request for one date and period.
type CreateLeaveRequest struct {
	FacultyName string `json:"facultyName" validate:"required"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Period      string `json:"period" validate:"required"`
	Reason      string `json:"reason" validate:"omitempty,max=500"`
}

// UpdateLeaveStatusRequest moves a leave request through its lifecycle.
type UpdateLeaveStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
}
