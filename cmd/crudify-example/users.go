package main

import (
	"context"
	"net/url"
	"slices"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/crudify/di"
	apperrors "github.com/kbukum/crudify/errors"
	"github.com/kbukum/crudify/module"
	"github.com/kbukum/crudify/router"
	"github.com/kbukum/crudify/validation"
)

// User is a stored user.
type User struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// johnID is the id of the seeded user.
var johnID = uuid.MustParse("6f1c2a8e-5b7d-4f0e-9a3c-2d4b6e8f0a1c")

type userStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]User
}

func newUserStore() *userStore {
	return &userStore{users: map[uuid.UUID]User{johnID: {ID: johnID, Name: "John"}}}
}

var (
	userStoreKey    = di.NewKey[*userStore]("UserStore")
	UsersServiceKey = di.NewKey[*UsersService]("UsersService")
)

// UsersService manages users. Inside a request it logs through the request
// logger, so a new instance is built for every request.
type UsersService struct {
	log   Logger
	store *userStore
}

var usersServiceClass = di.Injectable("UsersService", []di.Token{LoggerKey, userStoreKey}, di.Build(
	di.Func2(func(log Logger, store *userStore) (*UsersService, error) {
		return &UsersService{log: log, store: store}, nil
	}),
))

func (s *UsersService) List() []User {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	users := make([]User, 0, len(s.store.users))
	for _, u := range s.store.users {
		users = append(users, u)
	}
	slices.SortFunc(users, func(a, b User) int { return strings.Compare(a.Name, b.Name) })
	return users
}

func (s *UsersService) Get(id uuid.UUID) (User, error) {
	s.store.mu.RLock()
	defer s.store.mu.RUnlock()
	u, ok := s.store.users[id]
	if !ok {
		return User{}, apperrors.NotFound("user", id.String())
	}
	return u, nil
}

func (s *UsersService) Create(name string) User {
	u := User{ID: uuid.New(), Name: name}
	s.store.mu.Lock()
	s.store.users[u.ID] = u
	s.store.mu.Unlock()
	s.log.Log("User created", map[string]interface{}{"user_id": u.ID.String()})
	return u
}

// Dispose implements di.Disposable.
func (s *UsersService) Dispose(context.Context) error {
	s.log.Log("UsersService released")
	return nil
}

type usersController struct {
	users *UsersService
}

var usersControllerClass = di.Injectable("UsersController", []di.Token{UsersServiceKey}, di.Build(
	di.Func1(func(users *UsersService) (*usersController, error) {
		return &usersController{users: users}, nil
	}),
), di.WithAutoDispose(false))

func (c *usersController) list(u *url.URL, q url.Values) (any, error) {
	return gin.H{
		"url":       u.String(),
		"query":     q.Encode(),
		"logged_by": c.users.log.Prefix(),
		"users":     c.users.List(),
	}, nil
}

func (c *usersController) get(p gin.Params) (any, error) {
	id, err := validation.ValidateUUID("id", p.ByName("id"))
	if err != nil {
		return nil, err
	}
	return c.users.Get(id)
}

type createUserRequest struct {
	Name string `json:"name"`
}

func (c *usersController) create(ctx *gin.Context) (any, error) {
	var body createUserRequest
	if err := ctx.ShouldBindJSON(&body); err != nil {
		return nil, apperrors.InvalidInput("body", err.Error())
	}
	if appErr := validation.New().
		Required("name", body.Name).
		MaxLength("name", body.Name, 64).
		Validate(); appErr != nil {
		return nil, appErr
	}
	return c.users.Create(body.Name), nil
}

var usersRoutes = &router.Controller{
	Name:  "Users",
	Path:  "/users",
	Class: usersControllerClass,
	Routes: []router.Route{
		router.Get("", "list", []di.Token{URLKey, router.Query}, func(recv any, args []any) (any, error) {
			return recv.(*usersController).list(args[0].(*url.URL), args[1].(url.Values))
		}),
		router.Get("/:id", "get", []di.Token{router.Params}, func(recv any, args []any) (any, error) {
			return recv.(*usersController).get(args[0].(gin.Params))
		}),
		router.Post("", "create", []di.Token{router.Context}, func(recv any, args []any) (any, error) {
			return recv.(*usersController).create(args[0].(*gin.Context))
		}),
	},
}

// usersModule serves /users and exports UsersService.
func usersModule(httpUtil *module.Module) *module.Module {
	return &module.Module{
		Name:    "users",
		Imports: []*module.Module{httpUtil},
		Providers: []di.Provider{
			di.UseValue(userStoreKey, newUserStore()),
			di.UseClass(UsersServiceKey, usersServiceClass),
		},
		Exports:     []di.Token{UsersServiceKey},
		Controllers: []*router.Controller{usersRoutes},
	}
}
