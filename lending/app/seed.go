package app

import (
	"os"

	"github.com/Astemirdum/lending-service/lending/internal/model"
	"github.com/Astemirdum/lending-service/lending/internal/repository/inmem"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type seedFile struct {
	Staff []struct {
		ID    uuid.UUID `yaml:"id"`
		Name  string    `yaml:"name"`
		Email string    `yaml:"email"`
	} `yaml:"staff"`
	Students []struct {
		ID   uuid.UUID `yaml:"id"`
		Name string    `yaml:"name"`
	} `yaml:"students"`
	Books []struct {
		ID    uuid.UUID `yaml:"id"`
		Title string    `yaml:"title"`
		Total int       `yaml:"total"`
	} `yaml:"books"`
}

func seedStore(path string, store *inmem.Store) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrap(err, "read seed")
	}
	var seed seedFile
	if err = yaml.Unmarshal(data, &seed); err != nil {
		return errors.Wrap(err, "yaml.Unmarshal seed")
	}
	for _, st := range seed.Staff {
		store.AddStaff(model.Staff{ID: st.ID, Name: st.Name, Email: st.Email})
	}
	for _, st := range seed.Students {
		store.AddStudent(model.Student{ID: st.ID, Name: st.Name})
	}
	for _, b := range seed.Books {
		if b.Total < 0 {
			return errors.Errorf("book %s: negative total", b.ID)
		}
		store.AddBook(model.Book{ID: b.ID, Title: b.Title, TotalCount: b.Total})
	}
	return nil
}
