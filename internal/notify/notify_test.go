package notify

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Recorder(t *testing.T) {
	assert := assert.New(t)

	r := &Recorder{}
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			lvl := Success
			if i%2 == 0 {
				lvl = Error
			}
			r.Notify(Notification{Level: lvl, Message: "m"})
		}(i)
	}
	wg.Wait()

	assert.Len(r.All(), 10)
	assert.Equal(5, r.Count(Success))
	assert.Equal(5, r.Count(Error))
	assert.Equal(0, r.Count(Info))

	r.Reset()
	assert.Empty(r.All())
}

func Test_Notification_String(t *testing.T) {
	testCases := []struct {
		name   string
		input  Notification
		expect string
	}{
		{name: "info", input: Notification{Level: Info, Message: "hi"}, expect: "info: hi"},
		{name: "success", input: Notification{Level: Success, Message: "done"}, expect: "success: done"},
		{name: "error", input: Notification{Level: Error, Message: "oops"}, expect: "error: oops"},
		{name: "unknown level", input: Notification{Level: Level(9), Message: "?"}, expect: "Level(9): ?"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			assert.Equal(tc.expect, tc.input.String())
		})
	}
}

func Test_Confirmers(t *testing.T) {
	assert := assert.New(t)

	var asked string
	f := ConfirmerFunc(func(prompt string) bool {
		asked = prompt
		return true
	})

	assert.True(f.Confirm("delete?"))
	assert.Equal("delete?", asked)
	assert.True(Always(true).Confirm("x"))
	assert.False(Always(false).Confirm("x"))
}
