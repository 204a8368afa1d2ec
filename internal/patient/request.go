package patient

type AddContactRequest struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

type CreateProfileRequest struct {
	ID       string              `json:"id"`
	Name     string              `json:"name"`
	Contacts []AddContactRequest `json:"emergency_contacts"`
}

type EnrollRequest struct {
	Code string `json:"code" binding:"required"`
}
