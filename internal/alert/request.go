package alert

type ContactRequest struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

type NotifyRequest struct {
	PatientID     string           `json:"patientId"`
	PatientName   string           `json:"patientName"`
	DistressLevel string           `json:"distressLevel"`
	Contacts      []ContactRequest `json:"contacts,omitempty"`
}
