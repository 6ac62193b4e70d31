package dto

// RegisterSchoolRequest bootstraps a new school with its first administrator
type RegisterSchoolRequest struct {
	SchoolName     string `json:"schoolName" binding:"required,min=2,max=120" example:"Ataturk Primary School"`
	City           string `json:"city" binding:"omitempty,max=80" example:"Izmir"`
	AdminEmail     string `json:"adminEmail" binding:"required,email" example:"admin@school.example"`
	AdminFirstName string `json:"adminFirstName" binding:"required,max=60" example:"Kemal"`
	AdminLastName  string `json:"adminLastName" binding:"required,max=60" example:"Demir"`
	AdminPassword  string `json:"adminPassword" binding:"required,min=8" example:"s3cretpass"`
}

// RegisterSchoolResponse carries the identifiers created during registration
type RegisterSchoolResponse struct {
	SchoolID int64 `json:"schoolId" example:"1"`
	AdminID  int64 `json:"adminId" example:"1"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@school.example"`
	Password string `json:"password" binding:"required" example:"s3cretpass"`
}

// LoginResponse carries the issued access token
type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expiresIn" example:"3600"`
	User      UserResponse `json:"user"`
}

// ActivateAccountRequest consumes a one-time activation token and sets the
// account's first password
type ActivateAccountRequest struct {
	Token    string `json:"token" binding:"required,uuid" example:"7b1a3f0e-..."`
	Password string `json:"password" binding:"required,min=8" example:"s3cretpass"`
}
