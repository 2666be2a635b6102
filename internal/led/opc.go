package led

import (
	"fmt"

	opc "github.com/kellydunn/go-opc"
)

// OPCDriver writes frames to a fadecandy (or any Open Pixel Control) server.
type OPCDriver struct {
	server  string
	channel uint8
	client  *opc.Client
}

// NewOPCDriver creates a driver connected to the given OPC server, e.g.
// "localhost:7890". All three LEDs live on one OPC channel.
func NewOPCDriver(server string, channel uint8) (*OPCDriver, error) {
	d := &OPCDriver{server: server, channel: channel}
	if err := d.connect(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *OPCDriver) connect() error {
	client := opc.NewClient()
	if err := client.Connect("tcp", d.server); err != nil {
		return fmt.Errorf("connect to opc server %s: %w", d.server, err)
	}
	d.client = client
	return nil
}

// WriteFrame sends one frame to the OPC server. On a send failure the
// connection is dropped and re-dialed once; if that write also fails the
// error is returned and the caller skips this frame.
func (d *OPCDriver) WriteFrame(frame Frame) error {
	if d.client == nil {
		if err := d.connect(); err != nil {
			return err
		}
	}

	if err := d.send(frame); err == nil {
		return nil
	}

	d.client = nil
	if err := d.connect(); err != nil {
		return err
	}
	if err := d.send(frame); err != nil {
		d.client = nil
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

func (d *OPCDriver) send(frame Frame) error {
	m := opc.NewMessage(d.channel)
	m.SetLength(uint16(NumLeds * 3))
	for i, c := range frame {
		m.SetPixelColor(i, c.R, c.G, c.B)
	}
	return d.client.Send(m)
}

// Close blanks the LEDs and drops the connection.
func (d *OPCDriver) Close() error {
	if d.client == nil {
		return nil
	}
	err := d.send(Frame{})
	d.client = nil
	return err
}
