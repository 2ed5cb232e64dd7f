package course

// CertificateInfo is the snapshot shown on a generated certificate. It is never persisted.
type CertificateInfo struct {
	StudentName    string `json:"student_name"`
	CourseTitle    string `json:"course_title"`
	CompletionDate string `json:"completion_date"`
	CourseCategory string `json:"course_category"`
	Number         string `json:"certificate_number"`
}
