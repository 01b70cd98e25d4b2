package discovery

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
)

var (
	// ErrMalformedSubnet is wrapped by every *SubnetError
	ErrMalformedSubnet = errors.New("malformed subnet")

	// ErrInvalidRange is returned when the start octet is after the end octet
	ErrInvalidRange = errors.New("start octet is greater than end octet")

	// ErrNoLocalSubnet is returned when the host has no usable IPv4 address
	ErrNoLocalSubnet = errors.New("no local IPv4 subnet found")
)

// SubnetError describes why a subnet prefix was rejected
type SubnetError struct {
	// Subnet is the prefix as given
	Subnet string

	// Octet is the offending part, or the whole prefix when the part count is wrong
	Octet string

	// Reason explains the rejection
	Reason string
}

func (e *SubnetError) Error() string {
	return fmt.Sprintf("malformed subnet %q: octet %q %s", e.Subnet, e.Octet, e.Reason)
}

func (e *SubnetError) Unwrap() error {
	return ErrMalformedSubnet
}

// Subnet is a validated /24 prefix such as "192.168.1"
type Subnet [3]uint8

// ParseSubnet validates a three-octet prefix like "192.168.1".
func ParseSubnet(prefix string) (Subnet, error) {
	parts := strings.Split(prefix, ".")
	if len(parts) != 3 {
		return Subnet{}, &SubnetError{
			Subnet: prefix,
			Octet:  prefix,
			Reason: fmt.Sprintf("must have exactly 3 parts, got %d", len(parts)),
		}
	}

	var s Subnet
	for i, part := range parts {
		n, err := strconv.ParseUint(part, 10, 8)
		if err != nil {
			return Subnet{}, &SubnetError{
				Subnet: prefix,
				Octet:  part,
				Reason: "is not a number between 0 and 255",
			}
		}
		s[i] = uint8(n)
	}
	return s, nil
}

// String returns the prefix in dotted form without the host octet
func (s Subnet) String() string {
	return fmt.Sprintf("%d.%d.%d", s[0], s[1], s[2])
}

// Address returns the full IPv4 address for host octet i
func (s Subnet) Address(i uint8) string {
	return fmt.Sprintf("%s.%d", s, i)
}

// Addresses expands subnet and the inclusive host range into dotted addresses.
func Addresses(subnet string, start, end uint8) ([]string, error) {
	s, err := ParseSubnet(subnet)
	if err != nil {
		return nil, err
	}
	if start > end {
		return nil, fmt.Errorf("%w: %d > %d", ErrInvalidRange, start, end)
	}

	addrs := make([]string, 0, int(end)-int(start)+1)
	for i := int(start); i <= int(end); i++ {
		addrs = append(addrs, s.Address(uint8(i)))
	}
	return addrs, nil
}

// LocalSubnet returns the /24 prefix of the first usable IPv4 address on the
// host, skipping loopback (127/8) and link-local (169.254/16).
func LocalSubnet() (string, error) {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "", fmt.Errorf("failed to list interface addresses: %w", err)
	}
	return localSubnetFromAddrs(addrs)
}

func localSubnetFromAddrs(addrs []net.Addr) (string, error) {
	for _, addr := range addrs {
		var ip net.IP
		switch v := addr.(type) {
		case *net.IPNet:
			ip = v.IP
		case *net.IPAddr:
			ip = v.IP
		default:
			continue
		}

		ip4 := ip.To4()
		if ip4 == nil {
			continue
		}
		if ip4[0] == 127 || (ip4[0] == 169 && ip4[1] == 254) {
			continue
		}
		return Subnet{ip4[0], ip4[1], ip4[2]}.String(), nil
	}
	return "", ErrNoLocalSubnet
}
