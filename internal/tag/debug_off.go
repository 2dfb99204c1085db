//go:build !collision_debug

package tag

const debug = false
