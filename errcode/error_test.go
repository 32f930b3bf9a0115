package errcode

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorWrapsCauseAndCode(t *testing.T) {
	cause := fmt.Errorf("vk.Result(-1)")
	err := New(CreateInstanceFail, cause)

	require.True(t, IsCode(err, CreateInstanceFail))
	require.False(t, IsCode(err, CreateDeviceFail))
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "create_instance_fail")
}

func TestErrorsIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CreateSwapchainFail, nil))
	require.True(t, errors.Is(err, New(CreateSwapchainFail, nil)))
	require.False(t, errors.Is(err, New(CreateSurfaceFail, nil)))
}

func TestUnwinderRunsInReverseOrder(t *testing.T) {
	var order []int
	u := &Unwinder{}
	u.Push(func() { order = append(order, 1) })
	u.Push(func() { order = append(order, 2) })
	u.Push(func() { order = append(order, 3) })

	u.Unwind()
	require.Equal(t, []int{3, 2, 1}, order)

	u.Unwind()
	require.Equal(t, []int{3, 2, 1}, order, "second unwind must be a no-op")
}

func TestUnwinderReleaseDiscardsSteps(t *testing.T) {
	ran := false
	u := &Unwinder{}
	u.Push(func() { ran = true })
	u.Release()
	u.Unwind()
	require.False(t, ran)
}

func TestRecoverTurnsPanicIntoError(t *testing.T) {
	torndown := false
	fn := func() (err error) {
		u := &Unwinder{}
		defer Recover(u, &err)
		u.Push(func() { torndown = true })
		panic("construction blew up")
	}

	err := fn()
	require.True(t, IsCode(err, PlatformInitFail))
	require.Contains(t, err.Error(), "construction blew up")
	require.True(t, torndown)
}
