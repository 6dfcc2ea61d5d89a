package httpapi

type LoginRequest struct {
	MemberID string `json:"memberId" binding:"required"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type ViewRequest struct {
	View string `json:"view" binding:"required"`
}

type ThemeRequest struct {
	Theme string `json:"theme" binding:"required,oneof=light dark"`
}

type AttendanceRequest struct {
	MemberID  string  `json:"memberId" binding:"required"`
	Date      string  `json:"date" binding:"required"`
	Status    *string `json:"status"`
	LeaveType *string `json:"leaveType"`
	Notes     *string `json:"notes"`
}

type AttendanceDeleteRequest struct {
	MemberID string `json:"memberId" binding:"required"`
	Date     string `json:"date" binding:"required"`
}
