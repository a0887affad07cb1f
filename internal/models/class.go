package models

// ClassRoom is a class (stream) with its class teacher.
type ClassRoom struct {
	ID        ID     `json:"id"`
	ClassName string `json:"class_name"`
	TeacherID ID     `json:"teacher_id"`
}

// EntityKey implements Entity.
func (c ClassRoom) EntityKey() ID { return c.ID }

// ClassRoomRow is a class with the teacher name resolved.
type ClassRoomRow struct {
	ClassRoom
	TeacherName string `json:"teacher_name"`
}
