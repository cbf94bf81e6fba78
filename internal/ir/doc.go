// Package ir is the small typed IR the kernel ABI passes operate on.
//
// It models only what argument layout, private frame allocation and
// address promotion need:
//   - Types: integers, floats, typed pointers with an address space,
//     vectors, arrays, structs and named opaque handles (images, samplers)
//   - Values: function arguments, integer constants and instructions
//   - Instructions: casts, element-pointer computation (GEP), loads,
//     stores, calls to intrinsics or functions, integer arithmetic
//   - Module: functions plus a data layout string carrying per address
//     space pointer sizes
//
// A function body is a single linear instruction list. Control flow does
// not influence any of the analyses built on top of this package, so it
// is not modelled.
//
// # Address spaces
//
// The numbering follows the GPU convention: private 0, global 1,
// constant 2, local 3, generic 4. Values above NumAddressSpaces encode a
// hardware resource (see EncodeResource).
package ir
