package principal

import "errors"

// ErrMissing - операции нужен пользователь, а он не передан.
var ErrMissing = errors.New("no acting user: set USER_ID or pass --user")

// Principal - действующий пользователь. Передаётся явно в каждую операцию
// хранилища, которой нужен владелец; в состоянии пакета не хранится.
type Principal struct {
	ID   string
	Name string
}

// New создаёт principal; пустой id отклоняется.
func New(id, name string) (Principal, error) {
	if id == "" {
		return Principal{}, ErrMissing
	}
	return Principal{ID: id, Name: name}, nil
}

// Valid сообщает, что p задаёт пользователя.
func (p Principal) Valid() bool { return p.ID != "" }
