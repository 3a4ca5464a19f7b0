package fixture_test

import (
	"container/list"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

type grade string

func (grade) Values() []grade { return []grade{"A", "B", "C"} }

type level int

type Person struct {
	Name   string
	Age    int `fixture:"min=18;max=99"`
	Rating float32
	Active bool
	Born   time.Time
	ID     uuid.UUID
	Nick   *string
	Grade  grade
	Level  level
	secret string
}

type exact struct {
	B byte    `fixture:"min=7;max=7"`
	S int16   `fixture:"min=-3;max=-3"`
	I int     `fixture:"min=42;max=42"`
	L int64   `fixture:"min=9000000000;max=9000000000"`
	U uint32  `fixture:"min=5;max=5"`
	F float32 `fixture:"min=1.5;max=1.5"`
	D float64 `fixture:"min=2.25;max=2.25"`
	C rune    `fixture:"min='x';max='x'"`
	H rune    `fixture:"min=9;max=3"`
}

type link struct {
	Value int
	Next  *link
}

type team struct {
	Lead   *Person
	Backup *Person
}

type basket struct {
	Items []string `fixture:"count=4"`
	Empty []int    `fixture:"count=0"`
}

type Notifier interface{ Notify() string }

type email struct{ To string }

func (e email) Notify() string { return "mail " + e.To }

type sms struct{ Phone string }

func (s *sms) Notify() string { return "sms " + s.Phone }

type alert struct {
	Via Notifier
}

type widget struct {
	Via  string `fixture:"-"`
	A, B int
	C    string
}

func newWidget() *widget { return &widget{Via: "none"} }

func newWidget3(a, b int, c string) *widget { return &widget{Via: "three", A: a, B: b, C: c} }

type Tags []string

func emptyTags() Tags { return Tags{} }

func seededTags() Tags { return Tags{"seed"} }

type labels struct {
	Tags Tags
}

type Box struct {
	_     struct{} `fixture:"params=T"`
	Value any      `fixture:"type=T"`
	Many  []any    `fixture:"type=[]T;count=2"`
}

type Pair struct {
	_   struct{} `fixture:"params=K,V"`
	Key any      `fixture:"type=K"`
	Val any      `fixture:"type=V"`
}

type Entry struct {
	Pair `fixture:"args=string,T"`
	_    struct{} `fixture:"params=T"`
	Note string
}

type holder struct {
	Inner Box
}

type rawBag struct {
	Stuff []any
}

type labelled struct {
	Name  string        `fixture:"value=fixed"`
	On    bool          `fixture:"value=false"`
	Grade grade         `fixture:"value=B"`
	Ptr   *int          `fixture:"value=5"`
	Wait  time.Duration `fixture:"value=1m30s"`
}

type badValue struct {
	N int `fixture:"value=abc"`
}

type badType struct {
	X any `fixture:"type=Nope"`
}

type wrongCount struct {
	N int `fixture:"count=3"`
}

type address struct {
	City string   `fixture:"strategy=city"`
	Zips []string `fixture:"count=3;elems=city"`
}

type audited struct {
	Secret string `fixture:"pii"`
	Public string
}

type account struct {
	balance int
	owner   string
}

func (a *account) SetBalance(v int)     { a.balance = v }
func (a *account) SetOwner(name string) { a.owner = name }

type fragile struct{}

func (*fragile) SetBoom(int) { panic("boom") }

type moody struct{}

func (*moody) SetMood(string) error { return errors.New("not today") }

type roster struct{ names []string }

func (r *roster) Add(n string) { r.names = append(r.names, n) }
func (r *roster) Len() int     { return len(r.names) }

type club struct {
	Members roster `fixture:"count=3"`
}

type bag struct {
	_     struct{} `fixture:"params=E"`
	items []any
}

func (b *bag) Add(x any) { b.items = append(b.items, x) }
func (b *bag) Len() int  { return len(b.items) }

type stock struct {
	Levels map[string]int       `fixture:"count=3"`
	Seen   map[int]struct{}     `fixture:"count=2"`
	Queue  *list.List           `fixture:"type=list.List[int];count=2"`
	Cache  *sync.Map            `fixture:"type=sync.Map[string, int];count=2"`
	Grid   [3]int
	Events chan string          `fixture:"count=2"`
	Flags  map[bool]int         `fixture:"count=5"`
	Nested map[string][]float64 `fixture:"count=1"`
}

type hooked struct {
	Name string
	Hook func()
}

type stringer struct{ fmt.Stringer }
