/*
RTLOOK is an rtl-sdr receiver for 433.92MHz OOK/ASK wireless sensors. It
decodes pulse-distance modulated telemetry from Rubicson and Prologue
wireless thermometers, running both protocol demodulators concurrently
over a single sample stream.

Command-line Flags:

	-d=0

Device index. With the rtl_tcp driver this is informational, device
selection happens on the server.

	-f=433.92M

Center frequency to receive on. Accepts SI suffixes.

	-s=48k

Sample rate. The protocol pulse-width limits assume 48kS/s before
decimation.

	-g=0

Tuner gain in dB, 0 enables automatic gain.

	-b=262144

Sample block size in bytes of interleaved IQ. Out-of-range values
(below 512 or above 4194304) fall back to the default with a warning.

	-l=10000

Level limit on the filtered envelope distinguishing pulse from gap.

	-c=0

Decimation exponent, keeps one of every 2^N sample pairs.

	-n=0

Number of IQ sample pairs to read before exiting, 0 for unlimited.

	-a=false

Analysis mode: report pulse start/end indices, lengths and running
average length instead of decoding. The average accumulates for the
whole run.

	-r=""

Read raw IQ samples from the named file instead of a receiver.

	-S=false

Force synchronous reads instead of the double-buffered reader.

	-server="127.0.0.1:1234"

Address or hostname of the rtl_tcp instance providing samples.

	-format="plain"

Decoded message output format: plain, csv, json or xml. Messages go to
stdout, diagnostics to stderr.

	-config=""

Optional yaml file supplying defaults for the -f, -s, -b, -l, -c, -g,
-server and -format flags when they are not set on the command line or
via RTLOOK_* environment variables. Other flags cannot be set from it.

	-filterid=

Display only messages matching an id in a comma-separated list of ids.

	-unique=false

Suppress consecutive duplicate messages from each sensor.

A trailing filename argument dumps the filtered sample stream, "-" dumps
to stdout. A short write to the dump is fatal.

Plain text messages are formatted as:

	{Time:2006-01-02T15:04:05.000 Prologue:{RID:0x9A Chan:2 Button:true First:false Temp:21.5}}
*/
package main
