package properties

// User references a workspace member by id. Name, email and avatar are
// display hints and may be left unset when only the reference matters.
type User struct {
	ID     string
	Name   string
	Email  string
	Avatar string
}

type UserDecoratorFunc func(*User)

func WithUserName(name string) UserDecoratorFunc {
	return func(u *User) {
		u.Name = name
	}
}

func WithUserEmail(email string) UserDecoratorFunc {
	return func(u *User) {
		u.Email = email
	}
}

func WithUserAvatar(url string) UserDecoratorFunc {
	return func(u *User) {
		u.Avatar = url
	}
}

func NewUser(id string) User {
	return User{ID: id}
}

func NewPerson(id string, decorators ...UserDecoratorFunc) User {
	u := User{ID: id}
	for _, decorator := range decorators {
		decorator(&u)
	}
	return u
}

func (u User) MarshalJSON() ([]byte, error) {
	obj := newWire()
	obj.Set("object", "user")
	obj.Set("id", u.ID)
	if u.Name != "" {
		obj.Set("name", u.Name)
	}
	if u.Avatar != "" {
		obj.Set("avatar_url", u.Avatar)
	}
	if u.Email != "" {
		person := newWire()
		person.Set("email", u.Email)
		obj.Set("type", "person")
		obj.Set("person", person)
	}

	return obj.MarshalJSON()
}
