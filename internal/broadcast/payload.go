package broadcast

// StudentListPayload is the data of an update_student_list event: the room's
// presence strings, sorted for deterministic dashboard rendering.
type StudentListPayload struct {
	Students []string `json:"students"`
}

// StudentPayload is the data of a student_joined/student_left event.
type StudentPayload struct {
	Name string `json:"name"`
}
